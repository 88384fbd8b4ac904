package app

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// databaseTarget describes a DSN without its credentials.
type databaseTarget struct {
	Type    string
	Host    string
	Port    int
	User    string
	Name    string
	SSLMode string
	Path    string
}

// String renders the target for startup logs.
func (t databaseTarget) String() string {
	if t.Type == "sqlite" {
		return "sqlite " + t.Path
	}
	return fmt.Sprintf("postgres %s@%s:%d/%s (sslmode=%s)", t.User, t.Host, t.Port, t.Name, t.SSLMode)
}

func databaseTargetFromDSN(dsn string) (databaseTarget, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return databaseTarget{}, fmt.Errorf("empty dsn")
	}

	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "file:") {
		pathPart := trimmed[len("file:"):]
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return databaseTarget{Type: "sqlite", Path: strings.TrimSpace(pathPart)}, nil
	}

	u, errParse := url.Parse(trimmed)
	if errParse != nil {
		return databaseTarget{}, fmt.Errorf("parse dsn: %w", errParse)
	}

	switch strings.ToLower(strings.TrimSpace(u.Scheme)) {
	case "postgres", "postgresql":
		port := 5432
		if rawPort := strings.TrimSpace(u.Port()); rawPort != "" {
			parsedPort, errPort := strconv.Atoi(rawPort)
			if errPort != nil {
				return databaseTarget{}, fmt.Errorf("parse port: %w", errPort)
			}
			port = parsedPort
		}

		username := ""
		if u.User != nil {
			username = strings.TrimSpace(u.User.Username())
		}

		sslMode := strings.TrimSpace(u.Query().Get("sslmode"))
		if sslMode == "" {
			sslMode = "disable"
		}

		return databaseTarget{
			Type:    "postgres",
			Host:    strings.TrimSpace(u.Hostname()),
			Port:    port,
			User:    username,
			Name:    strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
			SSLMode: sslMode,
		}, nil
	case "":
		path, _, _ := strings.Cut(trimmed, "?")
		return databaseTarget{Type: "sqlite", Path: path}, nil
	default:
		return databaseTarget{}, fmt.Errorf("unsupported dsn scheme")
	}
}
