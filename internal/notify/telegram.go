package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
)

// Telegram message hard limit is 4096 characters; chunks are cut
// earlier to leave room for the continuation header.
const telegramChunkSize = 4000

// Telegram sends the daily report to a chat via the bot API.
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

// NewTelegram registers bot token and chat identifier.
func NewTelegram(botToken, chatID string, logger *slog.Logger) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// WithBaseURL overrides the API host (used by tests).
func (t *Telegram) WithBaseURL(u string) *Telegram {
	t.baseURL = u
	return t
}

func (t *Telegram) Name() string { return "telegram" }

// SendSummary posts the report, split into chunks when it exceeds the
// Telegram message limit.
func (t *Telegram) SendSummary(ctx context.Context, summary *domain.DailySummary) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	chunks := splitMessage(FormatReport(summary), telegramChunkSize)
	for i, chunk := range chunks {
		if i > 0 {
			chunk = fmt.Sprintf("(continued %d/%d)\n\n%s", i+1, len(chunks), chunk)
		}
		if err := t.sendMessage(ctx, chunk); err != nil {
			return err
		}
	}

	t.logger.Info("telegram summary sent", "chat_id", t.chatID, "chunks", len(chunks))
	return nil
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit characters,
// breaking on line boundaries so formatting survives.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > limit && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
