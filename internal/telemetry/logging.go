// Package telemetry sets up logging, metrics and tracing.
package telemetry

import (
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a JSON zap logger on stdout wrapped for OpenTelemetry.
// Unknown levels fall back to info.
func NewLogger(level string, fields ...zap.Field) (*otelzap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.Encoding = "json"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build(zap.AddCallerSkip(1), zap.Fields(fields...))
	if err != nil {
		return nil, err
	}

	return otelzap.New(zapLogger, otelzap.WithMinLevel(zapLevel)), nil
}
