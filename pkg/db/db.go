// Package db opens the single postgres connection shared by every
// repository, grounded on the teacher's repository constructors (each takes
// a *gorm.DB; something has to build the first one).
package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with gorm's default logger silenced to Warn, matching the
// teacher's production repos (verbose SQL logging was never enabled there).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}
