package logger

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/workforce-lifecycle/internal/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New はモードとレベルに応じた zap ロガーを構築します。
// production は JSON、development はコンソール形式で出力します。
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "", "prod", "production":
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "dev", "development":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logger: unknown mode %q", cfg.Mode)
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l.Named("workforce"), nil
}
