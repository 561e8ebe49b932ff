package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSummary() *domain.DailySummary {
	return &domain.DailySummary{
		Date:              time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		AccountsMonitored: 2,
		TotalTweets:       7,
		SummaryText:       "## Summary\nBusy day.",
		Analysis:          "## Summary\nBusy day.",
		KeyInsights:       []string{"launches", "infra"},
		GeneratedAt:       time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC),
	}
}

func TestFormatReport(t *testing.T) {
	report := FormatReport(sampleSummary())

	assert.Contains(t, report, "Date: 2026-08-25")
	assert.Contains(t, report, "Accounts monitored: 2")
	assert.Contains(t, report, "Tweets collected: 7")
	assert.Contains(t, report, "Busy day.")
	assert.Contains(t, report, "1. launches")
	assert.Contains(t, report, "2. infra")
}

func TestFormatReport_NoInsights(t *testing.T) {
	s := sampleSummary()
	s.KeyInsights = nil
	assert.Contains(t, FormatReport(s), "(none)")
}

func TestTelegram_SendSummary(t *testing.T) {
	var gotTexts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "chat-1", r.FormValue("chat_id"))
		assert.Contains(t, r.URL.Path, "/bottoken-1/sendMessage")
		gotTexts = append(gotTexts, r.FormValue("text"))
	}))
	defer srv.Close()

	tg := NewTelegram("token-1", "chat-1", discardLogger()).WithBaseURL(srv.URL)
	require.NoError(t, tg.SendSummary(context.Background(), sampleSummary()))

	require.Len(t, gotTexts, 1)
	assert.Contains(t, gotTexts[0], "Date: 2026-08-25")
}

func TestTelegram_LongReportIsChunked(t *testing.T) {
	var gotTexts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTexts = append(gotTexts, r.FormValue("text"))
	}))
	defer srv.Close()

	s := sampleSummary()
	s.Analysis = strings.Repeat("a long line of analysis text\n", 400)

	tg := NewTelegram("token-1", "chat-1", discardLogger()).WithBaseURL(srv.URL)
	require.NoError(t, tg.SendSummary(context.Background(), s))

	require.Greater(t, len(gotTexts), 1, "long report must be split")
	for _, text := range gotTexts {
		assert.LessOrEqual(t, len(text), 4096)
	}
	assert.Contains(t, gotTexts[1], "(continued 2/")
}

func TestTelegram_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram("token-1", "chat-1", discardLogger()).WithBaseURL(srv.URL)
	require.Error(t, tg.SendSummary(context.Background(), sampleSummary()))
}

func TestTelegram_Misconfigured(t *testing.T) {
	tg := NewTelegram("", "", discardLogger())
	require.Error(t, tg.SendSummary(context.Background(), sampleSummary()))
}

func TestSplitMessage(t *testing.T) {
	short := splitMessage("hello", 100)
	assert.Equal(t, []string{"hello"}, short)

	long := strings.Repeat("0123456789\n", 30)
	chunks := splitMessage(long, 100)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
		// Breaks land on line boundaries.
		assert.True(t, strings.HasSuffix(c, "\n"))
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestEmail_SendSummary(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	email := NewEmail("smtp.example.com", 587, "bot@example.com", "secret", "me@example.com", discardLogger())
	email.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, email.SendSummary(context.Background(), sampleSummary()))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"me@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: X/Twitter Daily Monitoring Report - 2026-08-25")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain; charset=utf-8")
	assert.Contains(t, msg, "text/html; charset=utf-8")
	// The markdown heading is rendered to HTML in the second part.
	assert.Contains(t, msg, "<h2>Summary</h2>")
}

func TestEmail_Misconfigured(t *testing.T) {
	email := NewEmail("smtp.example.com", 587, "", "", "", discardLogger())
	require.Error(t, email.SendSummary(context.Background(), sampleSummary()))
}
