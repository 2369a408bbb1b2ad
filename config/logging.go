package config

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json or console
	OutputPath string `mapstructure:"output_path"` // log file teed next to stdout; empty for stdout only
}

// LogFilePath returns the path to the gateway log file.
func LogFilePath() string {
	return filepath.Join("logs", "fund-portal.log")
}

// NewLogger builds the zap logger. Like the API server, output goes to stdout and,
// when a file can be opened, to the log file as well.
func NewLogger(cfg LoggerConfig) (*zap.Logger, func(), error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "json" {
		encoderConfig = zap.NewProductionEncoderConfig()
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var writer io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.OutputPath != "" && cfg.OutputPath != "stdout" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), os.ModePerm); err != nil {
			return nil, nil, err
		}
		logFile, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		writer = io.MultiWriter(os.Stdout, logFile)
		closeFn = func() { _ = logFile.Close() }
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, closeFn, nil
}
