package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pauljones0/rental-board/internal/models"
)

const (
	colorAvailable = 3066993  // #2ECC71
	colorPending   = 16753920 // #FFA500
	colorFilled    = 9807270  // #95A5A6

	maxSendAttempts = 3
	baseRetryDelay  = 250 * time.Millisecond
)

type Client struct {
	webhookURL  string
	client      *http.Client
	rateLimiter *rate.Limiter
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		// Discord allows roughly 5 webhook requests per 2 seconds.
		rateLimiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Send posts an applied-transition announcement and returns the message ID.
func (c *Client) Send(ctx context.Context, t models.Transition) (string, error) {
	if c.webhookURL == "" {
		return "", nil
	}
	return c.sendAndGetMessageID(ctx, formatTransitionToEmbed(t))
}

type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func formatTransitionToEmbed(t models.Transition) discordEmbed {
	embed := discordEmbed{
		Title: fmt.Sprintf("%s → %s", t.ListingID, t.Action.Label()),
		Color: actionColor(t),
		Fields: []discordEmbedField{
			{Name: "Manager", Value: orDash(t.ManagerEmail), Inline: true},
			{Name: "Took", Value: t.Duration.Round(time.Millisecond).String(), Inline: true},
		},
	}
	if !t.RequestedAt.IsZero() {
		embed.Timestamp = t.RequestedAt.UTC().Format(time.RFC3339)
	}
	if t.Endpoint != "" {
		embed.Footer.Text = t.Endpoint
	}
	return embed
}

func actionColor(t models.Transition) int {
	switch t.Action {
	case models.StatusAvailable:
		return colorAvailable
	case models.StatusPending:
		return colorPending
	default:
		return colorFilled
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func (c *Client) sendAndGetMessageID(ctx context.Context, embed discordEmbed) (string, error) {
	payloadBytes, err := json.Marshal(discordWebhookPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return "", err
	}
	q := parsedURL.Query()
	q.Set("wait", "true")
	parsedURL.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedURL.String(), bytes.NewReader(payloadBytes))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var msgResponse discordMessageResponse
			if err := json.Unmarshal(bodyBytes, &msgResponse); err != nil {
				return "", err
			}
			return msgResponse.ID, nil
		}

		lastErr = fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
		wait := retryBackoff(resp, attempt)
		if wait == 0 {
			return "", lastErr
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

// retryBackoff returns how long to wait before retrying resp, or zero when the
// response should not be retried.
func retryBackoff(resp *http.Response, attempt int) time.Duration {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		return baseRetryDelay << attempt
	case resp.StatusCode >= 500:
		return baseRetryDelay << attempt
	default:
		return 0
	}
}
