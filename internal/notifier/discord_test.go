package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/pauljones0/rental-board/internal/models"
)

func testTransition() models.Transition {
	return models.Transition{
		ListingID:    "w-101",
		Action:       models.StatusFilled,
		ManagerEmail: "mgr@example.com",
		Endpoint:     "script.google.com",
		Outcome:      models.OutcomeApplied,
		RequestedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:     150400 * time.Microsecond,
	}
}

func TestFormatTransitionToEmbed(t *testing.T) {
	tr := testTransition()
	embed := formatTransitionToEmbed(tr)

	if embed.Title != "w-101 → Filled" {
		t.Errorf("Title incorrect. Got: %s", embed.Title)
	}
	if embed.Color != colorFilled {
		t.Errorf("Color = %d, want %d", embed.Color, colorFilled)
	}
	if embed.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("Timestamp = %q", embed.Timestamp)
	}
	if embed.Footer.Text != "script.google.com" {
		t.Errorf("Footer = %q", embed.Footer.Text)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("Expected 2 fields (Manager + Took), got %d", len(embed.Fields))
	}
	if embed.Fields[0].Value != "mgr@example.com" || embed.Fields[1].Value != "150ms" {
		t.Errorf("Fields incorrect: %+v", embed.Fields)
	}
}

func TestFormatTransitionToEmbed_Colors(t *testing.T) {
	tests := []struct {
		action models.Status
		want   int
	}{
		{models.StatusAvailable, colorAvailable},
		{models.StatusPending, colorPending},
		{models.StatusFilled, colorFilled},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			tr := testTransition()
			tr.Action = tt.action
			tr.ManagerEmail = ""
			embed := formatTransitionToEmbed(tr)
			if embed.Color != tt.want {
				t.Errorf("Color = %d, want %d", embed.Color, tt.want)
			}
			if embed.Fields[0].Value != "—" {
				t.Errorf("blank manager should render as dash, got %q", embed.Fields[0].Value)
			}
		})
	}
}

func TestClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Errorf("Expected wait=true query param")
		}

		var payload discordWebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if len(payload.Embeds) != 1 {
			t.Errorf("Expected 1 embed, got %d", len(payload.Embeds))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "12345", "channel_id": "67890"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	id, err := client.Send(context.Background(), testTransition())
	if err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if id != "12345" {
		t.Errorf("Expected ID 12345, got %s", id)
	}
}

func TestClient_Send_RetriesOn5xx(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt := atomic.AddInt32(&attempts, 1)
		if attempt <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "server error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "retry-success", "channel_id": "67890"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	id, err := client.Send(context.Background(), testTransition())
	if err != nil {
		t.Fatalf("Send() should have succeeded after retries, got error: %v", err)
	}
	if id != "retry-success" {
		t.Errorf("Expected ID 'retry-success', got %s", id)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("Expected 3 attempts (2 failures + 1 success), got %d", atomic.LoadInt32(&attempts))
	}
}

func TestClient_Send_RetriesOn429(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt := atomic.AddInt32(&attempts, 1)
		if attempt == 1 {
			w.Header().Set("Retry-After", "0.1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message": "rate limited"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "429-success", "channel_id": "67890"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	id, err := client.Send(context.Background(), testTransition())
	if err != nil {
		t.Fatalf("Send() should have succeeded after 429 retry, got error: %v", err)
	}
	if id != "429-success" {
		t.Errorf("Expected ID '429-success', got %s", id)
	}
}

func TestClient_Send_NoRetryOn4xx(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad request"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.rateLimiter = rate.NewLimiter(rate.Inf, 1)

	_, err := client.Send(context.Background(), testTransition())
	if err == nil {
		t.Fatal("Send() should have returned error for 400 response")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("Expected 1 attempt (no retry for 400), got %d", atomic.LoadInt32(&attempts))
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		retryAfter string
		attempt    int
		want       time.Duration
	}{
		{"429 with Retry-After", 429, "2", 0, 2 * time.Second},
		{"429 without Retry-After", 429, "", 0, baseRetryDelay},
		{"500 error", 500, "", 0, baseRetryDelay},
		{"503 error", 503, "", 1, 2 * baseRetryDelay},
		{"400 error", 400, "", 0, 0},
		{"404 error", 404, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.statusCode,
				Header:     http.Header{},
			}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}

			if got := retryBackoff(resp, tt.attempt); got != tt.want {
				t.Errorf("retryBackoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Send_EmptyWebhookURL(t *testing.T) {
	c := New("")
	id, err := c.Send(context.Background(), testTransition())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if id != "" {
		t.Errorf("Send() with empty webhook should return empty ID, got %q", id)
	}
}
