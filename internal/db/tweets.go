package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// InsertTweet persists one tweet, idempotent on the tweet id. A
// conflict is expected when an overlapping window re-fetches an item
// and is silently absorbed. Returns true if a new row was written.
func InsertTweet(db *sql.DB, t *domain.Tweet) (bool, error) {
	var mediaJSON sql.NullString
	if len(t.MediaURLs) > 0 {
		data, err := json.Marshal(t.MediaURLs)
		if err != nil {
			return false, errors.NewInternal(err)
		}
		mediaJSON = sql.NullString{String: string(data), Valid: true}
	}

	var views sql.NullInt64
	if t.Views != nil {
		views = sql.NullInt64{Int64: int64(*t.Views), Valid: true}
	}

	query := `
		INSERT OR IGNORE INTO tweets (
			id, author_handle, author_display_name, content, created_at,
			likes, retweets, replies, views, is_retweet, is_reply,
			media_json, url, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		t.ID, t.AuthorHandle, t.AuthorDisplayName, t.Content, t.CreatedAt.Unix(),
		t.Likes, t.Retweets, t.Replies, views, boolToInt(t.IsRetweet), boolToInt(t.IsReply),
		mediaJSON, t.URL, t.FetchedAt.Unix(),
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected > 0, nil
}

// LastTweetTime returns the watermark for a handle: the creation time
// of the newest persisted tweet, or nil when none exists. Absence is
// the bootstrap signal, not an error.
func LastTweetTime(db *sql.DB, handle string) (*time.Time, error) {
	var last sql.NullInt64
	err := db.QueryRow(`
		SELECT MAX(created_at) FROM tweets WHERE author_handle = ?
	`, handle).Scan(&last)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := time.Unix(last.Int64, 0).UTC()
	return &t, nil
}

// TweetsSince returns tweets created at or after since, newest first.
// An empty handle returns tweets from all accounts.
func TweetsSince(db *sql.DB, since time.Time, handle string) ([]domain.Tweet, error) {
	query := `
		SELECT id, author_handle, author_display_name, content, created_at,
			likes, retweets, replies, views, is_retweet, is_reply,
			media_json, url, fetched_at
		FROM tweets
		WHERE created_at >= ?
	`
	args := []any{since.Unix()}
	if handle != "" {
		query += " AND author_handle = ?"
		args = append(args, handle)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var tweets []domain.Tweet
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		tweets = append(tweets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tweets, nil
}

// CountTweets returns the number of persisted tweets for a handle, or
// all tweets when handle is empty.
func CountTweets(db *sql.DB, handle string) (int, error) {
	query := `SELECT COUNT(*) FROM tweets`
	args := []any{}
	if handle != "" {
		query += " WHERE author_handle = ?"
		args = append(args, handle)
	}

	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

func scanTweet(rows *sql.Rows) (*domain.Tweet, error) {
	var (
		t         domain.Tweet
		createdAt int64
		fetchedAt int64
		views     sql.NullInt64
		isRetweet int
		isReply   int
		mediaJSON sql.NullString
	)

	err := rows.Scan(
		&t.ID, &t.AuthorHandle, &t.AuthorDisplayName, &t.Content, &createdAt,
		&t.Likes, &t.Retweets, &t.Replies, &views, &isRetweet, &isReply,
		&mediaJSON, &t.URL, &fetchedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	t.IsRetweet = isRetweet != 0
	t.IsReply = isReply != 0
	if views.Valid {
		v := int(views.Int64)
		t.Views = &v
	}
	if mediaJSON.Valid && mediaJSON.String != "" {
		if err := json.Unmarshal([]byte(mediaJSON.String), &t.MediaURLs); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
