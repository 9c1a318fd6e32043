// Package database opens GORM connections to PostgreSQL/TimescaleDB.
package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/eddyflux/internal/log"
)

// NewGormLogger routes GORM's warnings and slow-query reports through zap.
func NewGormLogger(z *zap.Logger) logger.Interface {
	return logger.New(
		zap.NewStdLog(z),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// CreateConnection opens a GORM handle on the given PostgreSQL DSN.
func CreateConnection(connectionString string) (*gorm.DB, error) {
	return Open(postgres.Open(connectionString))
}

// Open opens a GORM handle on any dialector with the standard logger.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(log.GetZapLogger())})
	if err != nil {
		log.Warnf("unable to create a TimescaleDB connection: %v", err)
		return nil, err
	}
	return db, nil
}
