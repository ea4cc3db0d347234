package openai

import "errors"

var (
	// ErrNoChoices is returned when the model response carries no choices.
	ErrNoChoices = errors.New("no choices returned from model")

	// ErrSchemaViolation is returned when the extractor response parses but
	// is missing required fields.
	ErrSchemaViolation = errors.New("extractor response violates schema")

	// ErrEmptyTranscription is returned when the transcription service
	// responds with empty text.
	ErrEmptyTranscription = errors.New("transcription service returned empty text")
)
