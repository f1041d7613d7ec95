package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldRunID identifies one process run across all log lines.
	FieldRunID = "run_id"
	// FieldListingIndex is the zero-based position of a listing on the page.
	FieldListingIndex = "listing_index"
	// FieldListingTitle is the best-effort title of a listing.
	FieldListingTitle = "listing_title"
	// FieldField names the detail-view field being extracted.
	FieldField = "field"
	// FieldStrategy names the extraction strategy that produced a value.
	FieldStrategy = "strategy"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithAI attaches the provider and model fields to the logger.
func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// WithListing attaches the listing position and title to the logger.
func WithListing(logger *zap.Logger, index int, title string) *zap.Logger {
	fields := append([]zap.Field{zap.Int(FieldListingIndex, index)},
		StringFields(StringField{Key: FieldListingTitle, Value: title})...)
	return WithFields(logger, fields...)
}
