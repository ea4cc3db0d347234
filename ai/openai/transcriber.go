package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/castkeep/castkeep/ai"
)

// Transcriber implements ai.Transcriber against an OpenAI-compatible
// /audio/transcriptions endpoint (hosted OpenAI, faster-whisper-server,
// LocalAI, and similar).
//
// langchaingo does not cover the audio APIs, so this client speaks the
// multipart protocol directly.
type Transcriber struct {
	httpClient *http.Client
	endpoint   string
	model      string
	logger     *slog.Logger
}

// transcriptionResponse is the JSON body returned by the endpoint.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Transcriber{
		httpClient: &http.Client{},
		endpoint:   strings.TrimSuffix(config.TranscriptionHost, "/") + "/audio/transcriptions",
		model:      config.TranscriptionModel,
		logger:     slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe uploads the audio file and returns the transcript text.
// Vocabulary hints are passed as the recognizer prompt to bias it towards
// domain terms.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, vocabularyHints []string) (string, error) {
	t.logger.Debug("transcribing audio", "path", audioPath, "hints", len(vocabularyHints))

	audio, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("reading audio file: %w", err)
	}

	if err := form.WriteField("model", t.model); err != nil {
		return "", err
	}
	if len(vocabularyHints) > 0 {
		if err := form.WriteField("prompt", strings.Join(vocabularyHints, ", ")); err != nil {
			return "", err
		}
	}
	if err := form.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Error("transcription request failed", "err", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		t.logger.Error("transcription service error", "status", resp.StatusCode)
		return "", fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding transcription response: %w", err)
	}

	transcript := strings.TrimSpace(parsed.Text)
	if transcript == "" {
		return "", ErrEmptyTranscription
	}

	t.logger.Debug("transcription complete", "chars", len(transcript))
	return transcript, nil
}
