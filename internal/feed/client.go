// Package feed reads the listings feed and keeps the latest snapshot.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/util"
	"github.com/pauljones0/rental-board/internal/validator"
)

const maxFeedBytes = 10 << 20

// StatusError reports a non-2xx feed response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed status: %s", e.Status)
}

type Client struct {
	httpClient *http.Client
	url        string
	maxRetries int
	retryBase  time.Duration
	validator  *validator.Validator
	logger     *slog.Logger
}

func New(feedURL string, timeout time.Duration, maxRetries int, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        feedURL,
		maxRetries: maxRetries,
		retryBase:  time.Second,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Fetch downloads and decodes the feed. Transport failures and 5xx responses are
// retried with backoff; other statuses and malformed bodies fail immediately.
func (c *Client) Fetch(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := util.RetryWithBackoff(ctx, c.maxRetries, c.retryBase, func(attempt int) error {
		body, err := c.get(ctx)
		if err != nil {
			c.logger.Warn("Feed fetch attempt failed", "attempt", attempt+1, "url", c.url, "error", err)
			return err
		}
		decoded, err := Decode(body)
		if err != nil {
			return util.Permanent(err)
		}
		listings = c.keepValid(decoded)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load listings feed: %w", err)
	}
	return listings, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, util.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, statusErr
		}
		return nil, util.Permanent(statusErr)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}

// keepValid drops records that fail validation, such as records without an id.
func (c *Client) keepValid(listings []models.Listing) []models.Listing {
	kept := make([]models.Listing, 0, len(listings))
	for i, l := range listings {
		if err := c.validator.ValidateStruct(l); err != nil {
			c.logger.Warn("Skipping invalid feed record", "index", i, "fields", validator.FailedFields(err))
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

// Decode accepts a top-level listing array or an object with a "listings" array.
// Anything else is reported as models.ErrFeedFormat.
func Decode(data []byte) ([]models.Listing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", models.ErrFeedFormat)
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var envelope struct {
			Listings json.RawMessage `json:"listings"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrFeedFormat, err)
		}
		inner := bytes.TrimSpace(envelope.Listings)
		if len(inner) == 0 || inner[0] != '[' {
			return nil, fmt.Errorf("%w: listings field is missing or not an array", models.ErrFeedFormat)
		}
		return decodeArray(inner)
	default:
		return nil, fmt.Errorf("%w: unexpected top-level value", models.ErrFeedFormat)
	}
}

func decodeArray(data []byte) ([]models.Listing, error) {
	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFeedFormat, err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}
