// Package provider implements the X API v2 client.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

const defaultBaseURL = "https://api.x.com/2"

// Client talks to the X API v2 with a bearer token.
//
// The limiter is a floor under every upstream call (at most one
// request per second). It is a safety net, not the pacing policy: the
// ingest fetcher layers the configured per-account and per-batch
// delays on top.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bearer     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a Client for the given bearer token.
func New(bearer string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		bearer:     bearer,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupUser resolves a handle to its upstream identity. Costs one
// quota unit; callers cache the result.
func (c *Client) LookupUser(ctx context.Context, handle string) (*domain.Identity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/users/by/username/%s?user.fields=name,description",
		c.baseURL, url.PathEscape(handle))

	var payload userResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if payload.Data == nil || payload.Data.ID == "" {
		return nil, errors.NewNotFound(handle)
	}

	return &domain.Identity{
		UserID:      payload.Data.ID,
		DisplayName: payload.Data.Name,
		Bio:         payload.Data.Description,
	}, nil
}

// UserTweetsSince fetches tweets for a user created after since,
// capped at pageSize (provider maximum 100). The raw payload is
// mapped into domain tweets here; a malformed created_at falls back
// to the current time rather than failing the item.
func (c *Client) UserTweetsSince(ctx context.Context, userID, handle, displayName string, since time.Time, pageSize int) ([]domain.Tweet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	q := url.Values{}
	q.Set("start_time", since.UTC().Format(time.RFC3339))
	q.Set("max_results", fmt.Sprintf("%d", pageSize))
	q.Set("tweet.fields", "created_at,public_metrics,referenced_tweets,attachments")
	q.Set("expansions", "attachments.media_keys")
	q.Set("media.fields", "url,preview_image_url")

	endpoint := fmt.Sprintf("%s/users/%s/tweets?%s", c.baseURL, url.PathEscape(userID), q.Encode())

	var payload tweetsResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fetchedAt := now

	// Media keys resolve through the includes map.
	mediaMap := make(map[string]string)
	if payload.Includes != nil {
		for _, m := range payload.Includes.Media {
			u := m.URL
			if u == "" {
				u = m.PreviewImageURL
			}
			if u != "" {
				mediaMap[m.MediaKey] = u
			}
		}
	}

	tweets := make([]domain.Tweet, 0, len(payload.Data))
	for _, raw := range payload.Data {
		createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
		if err != nil {
			c.logger.Warn("malformed created_at, using fetch time",
				"tweet_id", raw.ID, "value", raw.CreatedAt)
			createdAt = now
		}

		var isRetweet, isReply bool
		for _, ref := range raw.ReferencedTweets {
			switch ref.Type {
			case "retweeted":
				isRetweet = true
			case "replied_to":
				isReply = true
			}
		}

		var mediaURLs []string
		if raw.Attachments != nil {
			for _, key := range raw.Attachments.MediaKeys {
				if u, ok := mediaMap[key]; ok {
					mediaURLs = append(mediaURLs, u)
				}
			}
		}

		t := domain.Tweet{
			ID:                raw.ID,
			AuthorHandle:      handle,
			AuthorDisplayName: displayName,
			Content:           raw.Text,
			CreatedAt:         createdAt.UTC(),
			IsRetweet:         isRetweet,
			IsReply:           isReply,
			MediaURLs:         mediaURLs,
			URL:               domain.CanonicalURL(handle, raw.ID),
			FetchedAt:         fetchedAt,
		}
		if raw.PublicMetrics != nil {
			t.Likes = raw.PublicMetrics.LikeCount
			t.Retweets = raw.PublicMetrics.RetweetCount
			t.Replies = raw.PublicMetrics.ReplyCount
			if raw.PublicMetrics.ImpressionCount > 0 {
				views := raw.PublicMetrics.ImpressionCount
				t.Views = &views
			}
		}
		tweets = append(tweets, t)
	}

	return tweets, nil
}

// get performs an authenticated GET and decodes the body, translating
// HTTP statuses into the operational error taxonomy.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFound(endpoint)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.NewQuotaExceeded(endpoint)
	case resp.StatusCode >= http.StatusInternalServerError:
		return errors.NewServerError(resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return errors.NewInternal(fmt.Errorf("unexpected status %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
