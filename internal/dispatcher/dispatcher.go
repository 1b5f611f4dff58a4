// Package dispatcher sends manager status transitions to the remote action endpoint.
package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/util"
)

// DefaultPathMarker identifies a deployed remote-procedure endpoint.
const DefaultPathMarker = "/exec"

// StatusError reports a non-2xx response from the action endpoint.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("action endpoint status: %s", e.Status)
	}
	return fmt.Sprintf("action endpoint status: %s, body: %s", e.Status, e.Body)
}

// CheckEndpoint validates base without touching the network.
func CheckEndpoint(base, marker string) error {
	if marker == "" {
		marker = DefaultPathMarker
	}
	b := util.TrimEndpoint(base)
	if b == "" {
		return fmt.Errorf("%w: endpoint is empty", models.ErrEndpointMisconfigured)
	}
	if !strings.Contains(b, marker) {
		return fmt.Errorf("%w: endpoint must contain %q", models.ErrEndpointMisconfigured, marker)
	}
	return nil
}

// BuildActionURL appends the percent-encoded listing id and action to base.
func BuildActionURL(base, listingID string, action models.Status) string {
	return fmt.Sprintf("%s?id=%s&action=%s",
		util.TrimEndpoint(base),
		util.EncodeComponent(listingID),
		util.EncodeComponent(string(action)),
	)
}

type Dispatcher struct {
	client  *http.Client
	limiter *rate.Limiter
	marker  string
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New returns a Dispatcher with a hard per-request timeout and a client-side
// request rate of ratePerSecond (burst 1).
func New(marker string, timeout time.Duration, ratePerSecond float64, logger *slog.Logger) *Dispatcher {
	if marker == "" {
		marker = DefaultPathMarker
	}
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Dispatcher{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		marker:   marker,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Marker returns the path marker endpoints must contain.
func (d *Dispatcher) Marker() string {
	return d.marker
}

// Dispatch requests one status transition. It issues at most one GET and never
// retries. Configuration problems are returned before any network activity, and a
// second call for the same listing and action while one is pending returns
// models.ErrActionInFlight.
func (d *Dispatcher) Dispatch(ctx context.Context, base, listingID string, action models.Status) error {
	if err := CheckEndpoint(base, d.marker); err != nil {
		return err
	}
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return fmt.Errorf("%w: listing id is empty", models.ErrInvalidAction)
	}
	if !models.IsManagerAction(action) {
		return fmt.Errorf("%w: %q", models.ErrInvalidAction, action)
	}

	key := listingID + "|" + string(action)
	if !d.acquire(key) {
		return models.ErrActionInFlight
	}
	defer d.release(key)

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("action rate limit: %w", err)
	}

	target := BuildActionURL(base, listingID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrEndpointMisconfigured, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("action request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	d.logger.Info("Action dispatched", "listing", listingID, "action", action,
		"endpoint", util.EndpointHost(base), "duration", time.Since(start))
	return nil
}

// Busy reports whether a dispatch for the pair is pending.
func (d *Dispatcher) Busy(listingID string, action models.Status) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inflight[strings.TrimSpace(listingID)+"|"+string(action)]
	return ok
}

func (d *Dispatcher) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[key]; busy {
		return false
	}
	d.inflight[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, key)
}
