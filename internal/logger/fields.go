package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the capability provider name.
	FieldProvider = "provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "model"
)

// CapabilityFields returns the standard fields describing a capability
// backend. Empty values are dropped to keep entries compact.
func CapabilityFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}
	return fields
}

// WithCapability attaches the capability fields to the logger, defaulting to
// a no-op logger when nil to avoid panics.
func WithCapability(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := CapabilityFields(provider, model)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
