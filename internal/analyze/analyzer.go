// Package analyze generates the daily LLM digest from collected tweets.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/birdwatch/birdwatch/internal/config"
	"github.com/birdwatch/birdwatch/internal/domain"
)

const systemPrompt = `You are a professional social media analyst. Your task is to:
1. Summarize each account's main activity
2. Identify important topics and trends
3. Analyze viewpoints and positions
4. Provide commentary and insight

Keep the analysis professional and objective.`

const maxTweetsPerAuthor = 10

// Analyzer turns a day's tweets into a structured summary via an
// OpenAI-compatible chat-completions endpoint.
type Analyzer struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds an Analyzer from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		endpoint:   cfg.OpenAIEndpoint,
		model:      cfg.OpenAIModel,
		apiKey:     cfg.OpenAIAPIKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// WithEndpoint overrides the API endpoint (used by tests).
func (a *Analyzer) WithEndpoint(endpoint string) *Analyzer {
	a.endpoint = endpoint
	return a
}

// Summarize analyzes the given tweets and returns the summary for
// date. An empty tweet set produces a placeholder summary without
// spending an API call.
func (a *Analyzer) Summarize(ctx context.Context, tweets []domain.Tweet, date time.Time) (*domain.DailySummary, error) {
	authors := make(map[string]bool)
	for i := range tweets {
		authors[tweets[i].AuthorHandle] = true
	}

	summary := &domain.DailySummary{
		Date:              date,
		AccountsMonitored: len(authors),
		TotalTweets:       len(tweets),
		GeneratedAt:       time.Now().UTC(),
	}

	if len(tweets) == 0 {
		summary.SummaryText = "No tweets collected for this period."
		return summary, nil
	}

	if a.apiKey == "" || a.endpoint == "" || a.model == "" {
		return nil, fmt.Errorf("analyzer misconfigured: missing api key, endpoint, or model")
	}

	userPrompt := buildPrompt(tweets, date)
	content, err := a.complete(ctx, userPrompt)
	if err != nil {
		return nil, err
	}

	a.logger.Info("generated daily analysis",
		"date", date.UTC().Format("2006-01-02"), "tweets", len(tweets))

	summary.SummaryText = content
	summary.Analysis = content
	summary.KeyInsights = extractInsights(content)
	return summary, nil
}

// buildPrompt formats the tweets grouped by author into the analysis
// request. Long tweets are clipped and each author contributes at most
// maxTweetsPerAuthor items to keep the prompt bounded.
func buildPrompt(tweets []domain.Tweet, date time.Time) string {
	byAuthor := make(map[string][]domain.Tweet)
	var order []string
	for _, t := range tweets {
		if _, seen := byAuthor[t.AuthorHandle]; !seen {
			order = append(order, t.AuthorHandle)
		}
		byAuthor[t.AuthorHandle] = append(byAuthor[t.AuthorHandle], t)
	}
	sort.Strings(order)

	var b strings.Builder
	for _, author := range order {
		group := byAuthor[author]
		displayName := group[0].AuthorDisplayName
		if displayName == "" {
			displayName = author
		}
		fmt.Fprintf(&b, "\n## @%s (%s)\n%d tweets\n\n", author, displayName, len(group))

		limit := len(group)
		if limit > maxTweetsPerAuthor {
			limit = maxTweetsPerAuthor
		}
		for _, t := range group[:limit] {
			prefix := ""
			if t.IsRetweet {
				prefix = "[RT] "
			} else if t.IsReply {
				prefix = "[reply] "
			}
			content := clipRunes(t.Content, 200)
			fmt.Fprintf(&b, "- [%s] %s%s\n", t.CreatedAt.UTC().Format("2006-01-02 15:04"), prefix, content)
			fmt.Fprintf(&b, "  likes=%d retweets=%d replies=%d\n", t.Likes, t.Retweets, t.Replies)
			fmt.Fprintf(&b, "  %s\n\n", t.URL)
		}
	}

	return fmt.Sprintf(`Analyze the following tweets from %s and provide:

1. **Daily Summary**: each account's main activity in 2-3 sentences
2. **Hot Topics**: the main topics and trends that appear
3. **Deep Analysis**: the viewpoints, positions, and potential impact these tweets reflect
4. **Key Insights**: the 3-5 most important findings as a bullet list

Tweet data:
%s

Respond in a structured format.`, date.UTC().Format("2006-01-02"), b.String())
}

// clipRunes truncates s to at most n runes, never splitting a
// multi-byte character.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// complete posts one chat-completion request and returns the first
// choice's content.
func (a *Analyzer) complete(ctx context.Context, userPrompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.7,
		"max_tokens":  4000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// extractInsights pulls the bullet list under a "Key Insights" heading
// out of the analysis text, capped at five items. Missing or oddly
// formatted sections yield an empty list, never an error.
func extractInsights(analysis string) []string {
	var insights []string
	inSection := false
	for _, line := range strings.Split(analysis, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "Key Insights") || strings.Contains(trimmed, "Key Findings") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") || startsWithDigit(trimmed) {
			insight := strings.TrimLeft(trimmed, "-•0123456789. ")
			if insight != "" {
				insights = append(insights, insight)
			}
			if len(insights) >= 5 {
				break
			}
		}
	}
	return insights
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
