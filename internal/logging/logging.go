package logging

import (
	"fmt"

	"github.com/safar/go-shop/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger from cfg.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.With(zap.String("service", "go-shop")), nil
}
