package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"suimu/internal/music"
	"suimu/internal/services"
	"suimu/internal/services/runner"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec runner.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps transcoder CLI interactions.
type Client struct {
	binary string
	exec   runner.Executor
}

// New constructs a transcoder client. A zero timeout disables the deadline.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transcoder binary required")
	}
	client := &Client{
		binary: binary,
		exec:   runner.New(time.Duration(timeoutSeconds) * time.Second),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert transcodes sourcePath into outputPath, tagging it from rec and
// trimming to the clip bounds when present.
func (c *Client) Convert(ctx context.Context, rec music.Record, sourcePath, outputPath string) (runner.Outcome, error) {
	tempPath := TempPath(outputPath)
	if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return runner.Outcome{}, services.Wrap(services.ErrTransient, "convert", "prepare", "remove stale temp output", err)
	}

	outcome, err := c.exec.Run(ctx, c.binary, Args(rec, sourcePath, tempPath))
	if err != nil || !outcome.Success() {
		_ = os.Remove(tempPath)
		return outcome, err
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		_ = os.Remove(tempPath)
		return outcome, services.Wrap(services.ErrTransient, "convert", "finalize", fmt.Sprintf("move %s into place", filepath.Base(outputPath)), err)
	}
	return outcome, nil
}

// TempPath returns the hidden sibling a conversion writes before the final
// rename: dir/.<name>.partial<ext>.
func TempPath(outputPath string) string {
	dir, base := filepath.Split(outputPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}

// Args builds the transcoder argument list. Clip bounds use the same decimal
// text that feeds the record identity.
func Args(rec music.Record, sourcePath, outputPath string) []string {
	args := []string{
		"-i", sourcePath,
		"-acodec", "copy",
		"-movflags", "faststart",
		"-metadata", fmt.Sprintf("title=%s / %s", rec.Title, rec.Artist),
		"-metadata", "artist=" + rec.Performer,
		"-vn",
	}
	if rec.ClipStart != nil {
		args = append(args, "-ss", rec.ClipStartText())
	}
	if rec.ClipEnd != nil {
		args = append(args, "-to", rec.ClipEndText())
	}
	return append(args, outputPath)
}
