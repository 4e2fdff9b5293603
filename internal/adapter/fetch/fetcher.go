// Package fetch retrieves the raw bytes behind a track's source locator.
//
// http and https locators go through net/http; file:// URLs and bare paths are
// read from the local filesystem. Every failure is a *domain.FetchError, which
// matches domain.ErrNetworkFailure.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

const (
	// DefaultTimeout bounds one HTTP attempt.
	DefaultTimeout = 30 * time.Second

	userAgent    = "mrytune/fetch"
	maxRedirects = 10
)

// Config configures a Fetcher.
type Config struct {
	Timeout time.Duration
	Retries int           // extra attempts after a transport error or 5xx
	Backoff time.Duration // delay before retry n is n*Backoff
}

// Fetcher implements ports.Fetcher.
type Fetcher struct {
	client  *http.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// New creates a Fetcher.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		retries: cfg.Retries,
		backoff: cfg.Backoff,
		logger:  logger.With(slog.String("component", "fetch")),
	}
}

// Fetch returns the full body behind rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, domain.NewFetchError(rawURL, 0, errors.New("empty locator"))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "file":
		return readFile(rawURL, u.Path)
	case "":
		return readFile(rawURL, rawURL)
	default:
		return nil, domain.NewFetchError(rawURL, 0, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.logger.Debug("retrying fetch", slog.String("url", rawURL), slog.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return nil, domain.NewFetchError(rawURL, 0, ctx.Err())
			case <-time.After(time.Duration(attempt) * f.backoff):
			}
		}

		data, err := f.get(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var fe *domain.FetchError
		if errors.As(err, &fe) && fe.Status >= 400 && fe.Status < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	f.logger.Warn("fetch failed", slog.String("url", rawURL), slog.Any("error", lastErr))
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewFetchError(rawURL, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}
	return data, nil
}

func readFile(rawURL, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}
	return data, nil
}

var _ ports.Fetcher = (*Fetcher)(nil)
