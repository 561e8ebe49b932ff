package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-token", testLogger(), WithBaseURL(srv.URL))
}

func TestLookupUser(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"id":"1605","name":"Sam Altman","username":"sama","description":"ai"}}`))
	})

	ident, err := client.LookupUser(context.Background(), "sama")
	require.NoError(t, err)
	assert.Equal(t, "1605", ident.UserID)
	assert.Equal(t, "Sam Altman", ident.DisplayName)
	assert.Equal(t, "ai", ident.Bio)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestLookupUser_EmptyData(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"title":"Not Found Error"}]}`))
	})

	_, err := client.LookupUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.ErrorCode
	}{
		{name: "not found", status: 404, code: errors.ErrNotFound},
		{name: "quota", status: 429, code: errors.ErrQuotaExceeded},
		{name: "server error", status: 500, code: errors.ErrServerError},
		{name: "bad gateway", status: 502, code: errors.ErrServerError},
		{name: "forbidden", status: 403, code: errors.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.LookupUser(context.Background(), "sama")
			assert.True(t, errors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
}

func TestUserTweetsSince_Mapping(t *testing.T) {
	body := `{
		"data": [
			{
				"id": "111",
				"text": "launch day",
				"created_at": "2026-08-25T09:00:00Z",
				"public_metrics": {"like_count": 5, "retweet_count": 2, "reply_count": 1, "impression_count": 900},
				"referenced_tweets": [{"type": "retweeted", "id": "99"}],
				"attachments": {"media_keys": ["k1", "k2", "missing"]}
			},
			{
				"id": "112",
				"text": "replying",
				"created_at": "2026-08-25T10:00:00Z",
				"referenced_tweets": [{"type": "replied_to", "id": "111"}]
			}
		],
		"includes": {
			"media": [
				{"media_key": "k1", "url": "https://pbs.example/a.jpg"},
				{"media_key": "k2", "preview_image_url": "https://pbs.example/b.jpg"}
			]
		}
	}`

	var gotQuery map[string][]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(body))
	})

	since := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	tweets, err := client.UserTweetsSince(context.Background(), "1605", "sama", "Sam", since, 50)
	require.NoError(t, err)
	require.Len(t, tweets, 2)

	first := tweets[0]
	assert.Equal(t, "111", first.ID)
	assert.Equal(t, "sama", first.AuthorHandle)
	assert.Equal(t, "Sam", first.AuthorDisplayName)
	assert.True(t, first.IsRetweet)
	assert.False(t, first.IsReply)
	assert.Equal(t, 5, first.Likes)
	require.NotNil(t, first.Views)
	assert.Equal(t, 900, *first.Views)
	// Unresolvable media keys are dropped, not errored.
	assert.Equal(t, []string{"https://pbs.example/a.jpg", "https://pbs.example/b.jpg"}, first.MediaURLs)
	assert.Equal(t, "https://x.com/sama/status/111", first.URL)

	second := tweets[1]
	assert.True(t, second.IsReply)
	assert.False(t, second.IsRetweet)
	assert.Zero(t, second.Likes)
	assert.Nil(t, second.Views)

	assert.Equal(t, "2026-08-25T00:00:00Z", gotQuery["start_time"][0])
	assert.Equal(t, "50", gotQuery["max_results"][0])
}

func TestUserTweetsSince_MalformedTimestampFallsBack(t *testing.T) {
	body := `{"data":[{"id":"111","text":"x","created_at":"not-a-time"}]}`
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	before := time.Now().Add(-time.Minute)
	tweets, err := client.UserTweetsSince(context.Background(), "1605", "sama", "Sam", time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, tweets, 1)

	// Falls back to roughly "now" instead of failing the item.
	assert.True(t, tweets[0].CreatedAt.After(before), "CreatedAt = %v", tweets[0].CreatedAt)
}

func TestUserTweetsSince_EmptyData(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	tweets, err := client.UserTweetsSince(context.Background(), "1605", "sama", "Sam", time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestUserTweetsSince_PageSizeClamped(t *testing.T) {
	var gotQuery map[string][]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	})

	_, err := client.UserTweetsSince(context.Background(), "1605", "sama", "Sam", time.Now(), 500)
	require.NoError(t, err)
	assert.Equal(t, "100", gotQuery["max_results"][0])
}
