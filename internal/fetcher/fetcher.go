package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/path-of-filtering/internal/models"
)

// MaxDocumentSize bounds a downloaded filter document
const MaxDocumentSize = 8 << 20

const userAgent = "path-of-filtering/1.0"

var ErrTooLarge = errors.New("filter document exceeds size limit")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StatusError is a response other than 200 OK
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// temporary reports whether asking again may succeed
func (e *StatusError) temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher downloads filter documents published online
type Fetcher struct {
	client   *http.Client
	attempts int
	backoff  time.Duration // pause before the second attempt, grows linearly
}

// New creates a fetcher from config; zero values fall back to 30s and 3 attempts
func New(cfg models.HTTPConfig) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		attempts: cfg.Retries,
		backoff:  time.Second,
	}
	if f.client.Timeout == 0 {
		f.client.Timeout = 30 * time.Second
	}
	if f.attempts <= 0 {
		f.attempts = 3
	}
	return f
}

// Fetch downloads a document. Network failures, 5xx and 429 responses are
// retried; other failures are returned at once.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var err error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			if werr := wait(ctx, time.Duration(attempt-1)*f.backoff); werr != nil {
				return "", werr
			}
		}

		var doc string
		doc, err = f.get(ctx, url)
		if err == nil {
			return doc, nil
		}
		if !retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("giving up after %d attempts: %w", f.attempts, err)
}

func retryable(err error) bool {
	if errors.Is(err, ErrTooLarge) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.temporary()
	}
	return true
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// get performs one request and returns the body without a UTF-8 BOM
func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxDocumentSize {
		return "", ErrTooLarge
	}
	return string(bytes.TrimPrefix(body, utf8BOM)), nil
}
