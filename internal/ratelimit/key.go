package ratelimit

import (
	"fmt"
	"strings"
)

// KeyForUser builds a limiter key for a per-user bucket such as "ai".
func KeyForUser(bucket string, userID uint64) string {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" || userID == 0 {
		return ""
	}
	return fmt.Sprintf("%s:u:%d", bucket, userID)
}

// KeyForClientIP builds a limiter key for a per-address bucket such as "login".
func KeyForClientIP(bucket, ip string) string {
	bucket = strings.TrimSpace(bucket)
	ip = strings.TrimSpace(ip)
	if bucket == "" || ip == "" {
		return ""
	}
	return fmt.Sprintf("%s:ip:%s", bucket, ip)
}

// Key builds a limiter key for the given scope.
func Key(scope Scope, bucket string, userID uint64, ip string) string {
	switch scope {
	case ScopeUser:
		return KeyForUser(bucket, userID)
	case ScopeClientIP:
		return KeyForClientIP(bucket, ip)
	default:
		return ""
	}
}
