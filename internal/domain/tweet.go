package domain

import (
	"fmt"
	"sort"
	"time"
)

// Tweet is a single post fetched from a monitored account.
type Tweet struct {
	// ID is the upstream tweet id; globally unique and immutable.
	ID string

	// AuthorHandle is the owning account's normalized handle.
	AuthorHandle string

	// AuthorDisplayName is the display name at fetch time.
	AuthorDisplayName string

	// Content is the tweet text.
	Content string

	// CreatedAt is the tweet's own creation time, not the fetch time.
	// It is the canonical ordering for presentation.
	CreatedAt time.Time

	// Engagement counters as reported by the provider.
	Likes    int
	Retweets int
	Replies  int
	Views    *int

	// Classification flags derived from referenced_tweets.
	IsRetweet bool
	IsReply   bool

	// MediaURLs lists attached media, resolved through the media
	// expansion map.
	MediaURLs []string

	// URL is the canonical link to the tweet.
	URL string

	// FetchedAt is when this row was ingested (audit column).
	FetchedAt time.Time
}

// EngagementScore weights replies and retweets above likes.
func (t *Tweet) EngagementScore() int {
	return t.Likes + t.Retweets*2 + t.Replies*3
}

// CanonicalURL builds the x.com status link for a tweet id.
func CanonicalURL(handle, id string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", handle, id)
}

// SortTweetsDesc orders tweets by creation time, newest first. Ties
// break on id so the order is stable across runs.
func SortTweetsDesc(tweets []Tweet) {
	sort.Slice(tweets, func(i, j int) bool {
		if !tweets[i].CreatedAt.Equal(tweets[j].CreatedAt) {
			return tweets[i].CreatedAt.After(tweets[j].CreatedAt)
		}
		return tweets[i].ID > tweets[j].ID
	})
}
