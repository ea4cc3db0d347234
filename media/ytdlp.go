package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	defaultBinary      = "yt-dlp"
	defaultURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// YtDlpFetcher implements Fetcher by shelling out to yt-dlp.
// The downloaded file lands in a work directory and is handed to the caller,
// who deletes it after transcription.
type YtDlpFetcher struct {
	binary      string
	urlTemplate string
	workDir     string
	logger      *slog.Logger
}

// YtDlpOption configures a YtDlpFetcher.
type YtDlpOption func(*YtDlpFetcher)

// WithBinary sets the yt-dlp binary path. Default is "yt-dlp" on PATH.
func WithBinary(binary string) YtDlpOption {
	return func(f *YtDlpFetcher) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// WithURLTemplate sets the fmt template that turns an item id into a source
// URL. Default resolves ids as YouTube video ids.
func WithURLTemplate(template string) YtDlpOption {
	return func(f *YtDlpFetcher) {
		if template != "" {
			f.urlTemplate = template
		}
	}
}

// WithWorkDir sets the directory for transient audio files.
// Default is the system temp directory.
func WithWorkDir(dir string) YtDlpOption {
	return func(f *YtDlpFetcher) {
		if dir != "" {
			f.workDir = dir
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) YtDlpOption {
	return func(f *YtDlpFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewYtDlpFetcher creates a fetcher that downloads audio via yt-dlp.
//
// Returns the Fetcher interface to enforce abstraction.
func NewYtDlpFetcher(opts ...YtDlpOption) Fetcher {
	f := &YtDlpFetcher{
		binary:      defaultBinary,
		urlTemplate: defaultURLTemplate,
		workDir:     os.TempDir(),
		logger:      slog.Default().With("component", "ytdlp-fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the best audio track for the item and returns the local path.
func (f *YtDlpFetcher) Fetch(ctx context.Context, itemID string) (string, error) {
	url := fmt.Sprintf(f.urlTemplate, itemID)
	outPath := filepath.Join(f.workDir, sanitizeFilename(itemID)+".m4a")

	f.logger.Debug("fetching audio", "itemID", itemID, "url", url)

	cmd := exec.CommandContext(ctx, f.binary,
		"--no-playlist",
		"--format", "bestaudio[ext=m4a]/bestaudio",
		"--output", outPath,
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		f.logger.Error("yt-dlp failed", "itemID", itemID, "err", err, "stderr", detail)
		return "", fmt.Errorf("%w: %s: %v", ErrNoAudio, detail, err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("%w: downloaded file missing: %v", ErrNoAudio, err)
	}

	f.logger.Info("audio acquired", "itemID", itemID, "path", outPath)
	return outPath, nil
}

// sanitizeFilename replaces path-hostile characters in an item id.
func sanitizeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}
