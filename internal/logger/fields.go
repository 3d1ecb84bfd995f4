package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldFilename     = "filename"
	FieldSubmissionID = "submission_id"
	FieldProvider     = "ai_provider"
	FieldModel        = "ai_model"
)

// Filename is the field attached to every per-file log entry.
func Filename(name string) zap.Field {
	return zap.String(FieldFilename, strings.TrimSpace(name))
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithProvider attaches the AI provider and model, skipping empty values.
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}
	return WithFields(logger, fields...)
}
