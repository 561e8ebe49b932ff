package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// SaveSummary upserts the daily summary for its date. Regenerating a
// report for a date replaces the stored record.
func SaveSummary(db *sql.DB, s *domain.DailySummary) error {
	var insightsJSON sql.NullString
	if len(s.KeyInsights) > 0 {
		data, err := json.Marshal(s.KeyInsights)
		if err != nil {
			return errors.NewInternal(err)
		}
		insightsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO summaries (date, accounts_monitored, total_tweets, summary_text, analysis, insights_json, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			accounts_monitored = excluded.accounts_monitored,
			total_tweets = excluded.total_tweets,
			summary_text = excluded.summary_text,
			analysis = excluded.analysis,
			insights_json = excluded.insights_json,
			generated_at = excluded.generated_at
	`
	_, err := db.Exec(query,
		s.DateKey(), s.AccountsMonitored, s.TotalTweets,
		s.SummaryText, s.Analysis, insightsJSON, s.GeneratedAt.Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSummary returns the summary stored for a date, or NotFound.
func GetSummary(db *sql.DB, date time.Time) (*domain.DailySummary, error) {
	key := date.UTC().Format("2006-01-02")
	row := db.QueryRow(`
		SELECT date, accounts_monitored, total_tweets, summary_text, analysis, insights_json, generated_at
		FROM summaries WHERE date = ?
	`, key)

	s, err := scanSummary(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// RecentSummaries returns up to limit summaries, newest date first.
func RecentSummaries(db *sql.DB, limit int) ([]domain.DailySummary, error) {
	if limit <= 0 {
		limit = 7
	}

	rows, err := db.Query(`
		SELECT date, accounts_monitored, total_tweets, summary_text, analysis, insights_json, generated_at
		FROM summaries ORDER BY date DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []domain.DailySummary
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		summaries = append(summaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return summaries, nil
}

func scanSummary(scan func(dest ...any) error) (*domain.DailySummary, error) {
	var (
		s            domain.DailySummary
		dateKey      string
		insightsJSON sql.NullString
		generatedAt  int64
	)
	err := scan(&dateKey, &s.AccountsMonitored, &s.TotalTweets,
		&s.SummaryText, &s.Analysis, &insightsJSON, &generatedAt)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return nil, err
	}
	s.Date = date
	s.GeneratedAt = time.Unix(generatedAt, 0).UTC()
	if insightsJSON.Valid && insightsJSON.String != "" {
		if err := json.Unmarshal([]byte(insightsJSON.String), &s.KeyInsights); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
