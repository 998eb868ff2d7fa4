package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openride/dispatch/internal/pkg/models"
)

// ZapLogger is the application logger
type ZapLogger struct {
	*zap.Logger
	sugar       *zap.SugaredLogger
	serviceName string
}

// NewZapLogger creates a logger from configuration
func NewZapLogger(cfg models.LoggerConfig, serviceName string) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	zl := zap.New(core, zap.AddCaller()).With(zap.String("service", serviceName))

	return &ZapLogger{
		Logger:      zl,
		sugar:       zl.Sugar(),
		serviceName: serviceName,
	}, nil
}

// InitFromConfig builds the logger and installs it as the global logger
func InitFromConfig(configs *models.Config) (*ZapLogger, error) {
	zl, err := NewZapLogger(configs.Logger, configs.App.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	SetGlobalLogger(zl)
	return zl, nil
}

// Sugar returns the sugared logger
func (l *ZapLogger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// WithError returns a logger with an error field attached
func (l *ZapLogger) WithError(err error) *zap.Logger {
	return l.Logger.With(zap.Error(err))
}

// Close flushes any buffered log entries
func (l *ZapLogger) Close() error {
	return l.Logger.Sync()
}
