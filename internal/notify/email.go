package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/birdwatch/birdwatch/internal/domain"
)

// Email sends the daily report as a multipart/alternative message:
// the plain-text report plus an HTML rendering of the markdown
// analysis.
type Email struct {
	host     string
	port     int
	username string
	password string
	to       string
	logger   *slog.Logger

	// send is swapped out by tests to capture the message.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmail configures an SMTP notifier.
func NewEmail(host string, port int, username, password, to string, logger *slog.Logger) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		to:       to,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

// SendSummary builds and sends the report email.
func (e *Email) SendSummary(ctx context.Context, summary *domain.DailySummary) error {
	if e.username == "" || e.password == "" || e.to == "" {
		return fmt.Errorf("email notifier misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := e.buildMessage(summary)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := e.send(addr, auth, e.username, []string{e.to}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	e.logger.Info("email summary sent", "to", e.to)
	return nil
}

const boundary = "birdwatch-alt"

func (e *Email) buildMessage(summary *domain.DailySummary) ([]byte, error) {
	html, err := renderHTML(summary)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", e.username)
	fmt.Fprintf(&b, "To: %s\r\n", e.to)
	fmt.Fprintf(&b, "Subject: X/Twitter Daily Monitoring Report - %s\r\n", summary.DateKey())
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	if err := writePart(&b, "text/plain; charset=utf-8", FormatReport(summary)); err != nil {
		return nil, err
	}
	if err := writePart(&b, "text/html; charset=utf-8", html); err != nil {
		return nil, err
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.Bytes(), nil
}

func writePart(b *bytes.Buffer, contentType, body string) error {
	fmt.Fprintf(b, "--%s\r\n", boundary)
	fmt.Fprintf(b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	w := quotedprintable.NewWriter(b)
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	b.WriteString("\r\n")
	return nil
}

// renderHTML converts the markdown analysis into the HTML body.
func renderHTML(summary *domain.DailySummary) (string, error) {
	var analysis bytes.Buffer
	if err := goldmark.Convert([]byte(summary.Analysis), &analysis); err != nil {
		return "", fmt.Errorf("render analysis: %w", err)
	}

	var insights strings.Builder
	if len(summary.KeyInsights) == 0 {
		insights.WriteString(`<div class="insight">(none)</div>`)
	} else {
		for i, insight := range summary.KeyInsights {
			fmt.Fprintf(&insights, `<div class="insight">%d. %s</div>`, i+1, insight)
			insights.WriteString("\n")
		}
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.8; color: #333; max-width: 900px; margin: 0 auto; padding: 30px 20px; }
h1 { color: #1da1f2; border-bottom: 3px solid #1da1f2; padding-bottom: 15px; }
.meta { background: #f5f8fa; padding: 20px; border-radius: 8px; border-left: 4px solid #1da1f2; }
.analysis { background: #fafbfc; padding: 25px; border-radius: 8px; border: 1px solid #e1e8ed; }
.insight { background: #e8f5e9; padding: 12px 20px; margin: 12px 0; border-left: 4px solid #4caf50; border-radius: 6px; }
.footer { margin-top: 40px; padding-top: 25px; border-top: 2px solid #e1e8ed; color: #657786; text-align: center; font-size: 13px; }
</style>
</head>
<body>
<h1>X/Twitter Daily Monitoring Report</h1>
<div class="meta">
<p><strong>Date:</strong> %s</p>
<p><strong>Accounts monitored:</strong> %d</p>
<p><strong>Tweets collected:</strong> %d</p>
<p><strong>Generated at:</strong> %s</p>
</div>
<div class="analysis">%s</div>
<h2>Key Insights</h2>
%s
<div class="footer"><p><em>Generated automatically by birdwatch</em></p></div>
</body>
</html>`,
		summary.DateKey(),
		summary.AccountsMonitored,
		summary.TotalTweets,
		summary.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		analysis.String(),
		insights.String(),
	)
	return html, nil
}
