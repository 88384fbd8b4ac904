package db

import (
	"fmt"

	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates all tables and seeds reference data.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.AccessToken{},
		&models.Category{},
		&models.Task{},
		&models.TaskHistory{},
		&models.ActivityLog{},
		&models.DirectoryItem{},
		&models.Tool{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_reset_sweep ON tasks (reset_cycle, last_reset_at)
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create reset sweep index: %w", errIndex)
	}
	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activity_logs_user_created ON activity_logs (user_id, created_at)
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create activity log index: %w", errIndex)
	}

	if errSeed := ensureDefaultTools(conn); errSeed != nil {
		return errSeed
	}
	return nil
}
