// Package manager implements the manager board: listings scoped to one manager
// email, status transitions through the action endpoint, and the audit trail
// of those transitions.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pauljones0/rental-board/internal/catalog"
	"github.com/pauljones0/rental-board/internal/config"
	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/util"
)

// Notices shown to the manager.
const (
	NoticeEnterEmail      = "Enter email"
	NoticeEnterEndpoint   = "Enter /exec URL"
	NoticeMissingEndpoint = "Missing /exec URL"
	NoticeInFlight        = "Update already in progress"
	NoticeFailed          = "Update failed"
	NoticeUnknownAction   = "Unknown action"
)

// Board summaries.
const (
	SummaryLoadFailed = "Failed to load listings"
	SummaryNoListings = "No listings found for this email"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ErrEmailRequired is returned when a manager operation is requested without an email.
var ErrEmailRequired = errors.New("manager email is required")

// Control is one action button on a board entry.
type Control struct {
	Action models.Status `json:"action"`
	Label  string        `json:"label"`
	Busy   bool          `json:"busy"`
}

// Entry is one listing on the manager board.
type Entry struct {
	catalog.View
	Controls []Control `json:"controls"`
}

// Board is the manager's view of their listings.
type Board struct {
	Email    string  `json:"email"`
	Endpoint string  `json:"endpoint"`
	Loaded   bool    `json:"loaded"`
	Summary  string  `json:"summary"`
	Notice   string  `json:"notice,omitempty"`
	Entries  []Entry `json:"entries"`
}

// ActionRequest asks for one status transition.
type ActionRequest struct {
	Email     string
	Endpoint  string
	ListingID string
	Action    string
}

// ActionResult is the outcome of Apply. Board is only set after a successful dispatch.
type ActionResult struct {
	Notice     string            `json:"notice"`
	Applied    bool              `json:"applied"`
	Transition models.Transition `json:"transition"`
	Board      *Board            `json:"board,omitempty"`
}

type Service struct {
	feed            FeedSource
	sender          ActionSender
	log             TransitionLog
	notifier        TransitionNotifier
	defaultEndpoint string
	maxStored       int
	now             func() time.Time
	newID           func() string
	logger          *slog.Logger
}

// New builds a Service. notifier may be nil.
func New(f FeedSource, sender ActionSender, log TransitionLog, n TransitionNotifier, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		feed:            f,
		sender:          sender,
		log:             log,
		notifier:        n,
		defaultEndpoint: cfg.ActionEndpointURL,
		maxStored:       cfg.MaxStoredTransitions,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          logger,
	}
}

// DefaultEndpoint is the action endpoint used when a request does not name one.
func (s *Service) DefaultEndpoint() string {
	return s.defaultEndpoint
}

func (s *Service) endpointOrDefault(endpoint string) string {
	if e := strings.TrimSpace(endpoint); e != "" {
		return e
	}
	return strings.TrimSpace(s.defaultEndpoint)
}

// Load re-reads the feed and returns the listings managed by email.
func (s *Service) Load(ctx context.Context, email, endpoint string) *Board {
	email = strings.TrimSpace(email)
	endpoint = s.endpointOrDefault(endpoint)
	board := &Board{Email: email, Endpoint: endpoint, Entries: []Entry{}}

	if email == "" {
		board.Notice = NoticeEnterEmail
		return board
	}
	if endpoint == "" {
		board.Notice = NoticeEnterEndpoint
		return board
	}

	snap, err := s.feed.Refresh(ctx)
	if err != nil {
		s.logger.Warn("Manager board load failed", "email", email, "error", err)
		board.Summary = SummaryLoadFailed
		return board
	}

	now := s.now()
	views := catalog.RunViews(snap.Listings, catalog.Criteria{ManagerEmail: email}, now)
	board.Loaded = true
	for _, v := range views {
		board.Entries = append(board.Entries, Entry{View: v, Controls: s.controls(v.ID)})
	}
	if len(board.Entries) == 0 {
		board.Summary = SummaryNoListings
	} else {
		board.Summary = fmt.Sprintf("%d listing(s)", len(board.Entries))
	}
	return board
}

func (s *Service) controls(listingID string) []Control {
	out := make([]Control, 0, len(models.ManagerActions))
	for _, a := range models.ManagerActions {
		out = append(out, Control{Action: a, Label: a.Label(), Busy: s.sender.Busy(listingID, a)})
	}
	return out
}

// Apply dispatches one transition. The returned error is the dispatch failure,
// if any; the result always carries the notice to show. Listings are never
// patched locally: a successful dispatch is followed by a feed re-read.
func (s *Service) Apply(ctx context.Context, req ActionRequest) (ActionResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return ActionResult{Notice: NoticeEnterEmail}, ErrEmailRequired
	}
	endpoint := s.endpointOrDefault(req.Endpoint)
	listingID := strings.TrimSpace(req.ListingID)
	action := models.Status(strings.ToLower(strings.TrimSpace(req.Action)))

	t := models.Transition{
		ID:           s.newID(),
		ListingID:    listingID,
		Action:       action,
		ManagerEmail: normalizeEmail(email),
		Endpoint:     util.EndpointHost(endpoint),
		RequestedAt:  s.now(),
	}

	start := time.Now()
	err := s.sender.Dispatch(ctx, endpoint, listingID, action)
	t.Duration = time.Since(start)

	var result ActionResult
	switch {
	case err == nil:
		t.Outcome = models.OutcomeApplied
		result.Applied = true
		result.Notice = fmt.Sprintf("%s → %s", listingID, strings.ToUpper(string(action)))
	case errors.Is(err, models.ErrActionInFlight):
		return ActionResult{Notice: NoticeInFlight}, err
	case errors.Is(err, models.ErrEndpointMisconfigured):
		t.Outcome = models.OutcomeMisconfigured
		result.Notice = NoticeMissingEndpoint
	case errors.Is(err, models.ErrInvalidAction):
		t.Outcome = models.OutcomeFailed
		result.Notice = NoticeUnknownAction
	default:
		t.Outcome = models.OutcomeFailed
		result.Notice = NoticeFailed
	}
	if err != nil {
		t.Error = err.Error()
		s.logger.Warn("Manager action failed", "listing", listingID, "action", action, "error", err)
	} else {
		s.logger.Info("Manager action applied", "listing", listingID, "action", action, "email", email)
	}

	// The remote call has happened; bookkeeping must not depend on the caller staying connected.
	bg := context.WithoutCancel(ctx)
	s.record(bg, t)
	result.Transition = t

	if err != nil {
		return result, err
	}

	s.announce(bg, t)
	result.Board = s.Load(bg, email, endpoint)
	return result, nil
}

// History returns recent transitions requested by email, newest first.
func (s *Service) History(ctx context.Context, email string, limit int) ([]models.Transition, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	out, err := s.log.RecentTransitions(ctx, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read transition history: %w", err)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, t models.Transition) {
	if err := s.log.RecordTransition(ctx, t); err != nil {
		s.logger.Warn("Failed to record transition", "id", t.ID, "error", err)
		return
	}
	if s.maxStored > 0 {
		if err := s.log.TrimOldTransitions(ctx, s.maxStored); err != nil {
			s.logger.Warn("Failed to trim transitions", "error", err)
		}
	}
}

func (s *Service) announce(ctx context.Context, t models.Transition) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(ctx, t); err != nil {
		s.logger.Warn("Failed to announce transition", "id", t.ID, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
