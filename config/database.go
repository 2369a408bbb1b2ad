package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenLookupDB connects to the read-only replica that serves category/subcategory names.
func OpenLookupDB(cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	// SQL statements are only logged when DEBUG_SQL=true.
	logLevel := logger.Warn
	if cfg.DebugSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(
			zap.NewStdLog(log.Named("gorm")),
			logger.Config{LogLevel: logLevel},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lookup database: %w", err)
	}

	log.Info("Lookup database connected", zap.String("host", cfg.Host), zap.String("database", cfg.Database))
	return db, nil
}
