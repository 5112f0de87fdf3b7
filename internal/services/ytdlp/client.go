package ytdlp

import (
	"context"
	"errors"
	"strings"
	"time"

	"suimu/internal/music"
	"suimu/internal/platform"
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

// Client wraps downloader CLI interactions.
type Client struct {
	binary string
	exec   runner.Executor
}

// New constructs a downloader client. The default executor is a runner with
// the given timeout; a zero timeout disables it.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("downloader binary required")
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

// Download fetches rec's source media to sourcePath.
func (c *Client) Download(ctx context.Context, rec music.Record, info platform.Info, sourcePath string) (runner.Outcome, error) {
	return c.exec.Run(ctx, c.binary, Args(info.SourceURL(rec.ExternalID), info.FormatSelector, sourcePath))
}

// Args builds the downloader argument list.
func Args(url, format, sourcePath string) []string {
	return []string{"-f", format, "-o", sourcePath, url}
}
