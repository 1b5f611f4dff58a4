// Package api exposes the catalog and the manager board over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauljones0/rental-board/internal/catalog"
	"github.com/pauljones0/rental-board/internal/feed"
	"github.com/pauljones0/rental-board/internal/manager"
	"github.com/pauljones0/rental-board/internal/models"
	"github.com/pauljones0/rental-board/internal/render"
)

// ListingSource provides feed snapshots.
type ListingSource interface {
	Current() *feed.Snapshot
	Refresh(ctx context.Context) (*feed.Snapshot, error)
}

// ManagerService is the manager workflow.
type ManagerService interface {
	Load(ctx context.Context, email, endpoint string) *manager.Board
	Apply(ctx context.Context, req manager.ActionRequest) (manager.ActionResult, error)
	History(ctx context.Context, email string, limit int) ([]models.Transition, error)
}

type Server struct {
	listings ListingSource
	manager  ManagerService
	now      func() time.Time
	logger   *slog.Logger
}

func New(listings ListingSource, m ManagerService, logger *slog.Logger) *Server {
	return &Server{listings: listings, manager: m, now: time.Now, logger: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/", s.catalogPage)

	api := r.Group("/api")
	api.GET("/listings", s.listListings)
	api.GET("/listings/:id", s.getListing)
	api.POST("/refresh", s.refresh)

	mgr := api.Group("/manager")
	mgr.GET("/listings", s.managerBoard)
	mgr.POST("/listings/:id/actions/:action", s.managerAction)
	mgr.GET("/history", s.managerHistory)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func criteriaFromQuery(c *gin.Context) catalog.Criteria {
	return catalog.ParseCriteria(c.Query("q"), c.Query("beds"), c.Query("maxPrice"), c.Query("status"))
}

func (s *Server) catalogPage(c *gin.Context) {
	snap := s.listings.Current()
	var views []catalog.View
	if snap.Loaded() {
		views = catalog.RunViews(snap.Listings, criteriaFromQuery(c), s.now())
	}
	page := render.NewPage(c.Query("q"), c.Query("beds"), c.Query("maxPrice"), c.Query("status"),
		views, !snap.Loaded(), snap.FetchedAt)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.Catalog(c.Writer, page); err != nil {
		s.logger.Error("Failed to render catalog page", "error", err)
	}
}

func (s *Server) listListings(c *gin.Context) {
	snap := s.listings.Current()
	if !snap.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load listings"})
		return
	}

	views := catalog.RunViews(snap.Listings, criteriaFromQuery(c), s.now())
	message := catalog.ResultMeta(len(views))
	if len(views) == 0 {
		message = catalog.NoMatches
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(views),
		"listings":  views,
		"message":   message,
		"fetchedAt": snap.FetchedAt,
	})
}

func (s *Server) getListing(c *gin.Context) {
	snap := s.listings.Current()
	if !snap.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load listings"})
		return
	}
	l, ok := snap.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrListingNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, catalog.BuildView(l, s.now()))
}

func (s *Server) refresh(c *gin.Context) {
	snap, err := s.listings.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(snap.Listings), "fetchedAt": snap.FetchedAt})
}

func (s *Server) managerBoard(c *gin.Context) {
	board := s.manager.Load(c.Request.Context(), c.Query("email"), c.Query("endpoint"))
	status := http.StatusOK
	if board.Notice != "" {
		status = http.StatusBadRequest
	}
	c.JSON(status, board)
}

type actionRequest struct {
	Email    string `json:"email"`
	Endpoint string `json:"endpoint"`
}

func (s *Server) managerAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	res, err := s.manager.Apply(c.Request.Context(), manager.ActionRequest{
		Email:     req.Email,
		Endpoint:  req.Endpoint,
		ListingID: c.Param("id"),
		Action:    c.Param("action"),
	})
	c.JSON(actionStatus(err), res)
}

func actionStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrActionInFlight):
		return http.StatusConflict
	case errors.Is(err, manager.ErrEmailRequired),
		errors.Is(err, models.ErrEndpointMisconfigured),
		errors.Is(err, models.ErrInvalidAction):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) managerHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	history, err := s.manager.History(c.Request.Context(), c.Query("email"), limit)
	if err != nil {
		if errors.Is(err, manager.ErrEmailRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("Failed to read transition history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(history), "transitions": history})
}
