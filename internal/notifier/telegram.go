package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"
)

const (
	telegramAPIBase = "https://api.telegram.org"

	// MaxMessageLen is Telegram's sendMessage limit, counted in UTF-16 code units.
	MaxMessageLen = 4096
)

// TelegramNotifier delivers formatted analysis, ranking and alert messages to one chat.
type TelegramNotifier struct {
	APIBase  string
	BotToken string
	ChatID   string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		APIBase:  telegramAPIBase,
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// RateLimitError is returned when Telegram answers 429 with a retry_after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("telegram rate limited, retry after %v", e.RetryAfter)
}

// Send delivers text to the configured chat, split into as many messages as the
// length limit requires. It stops at the first chunk that fails.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	chunks := SplitMessage(text, MaxMessageLen)
	for i, chunk := range chunks {
		if err := t.sendChunk(ctx, chunk); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// SendWithRetry delivers text chunk by chunk, retrying each failed chunk with exponential
// backoff so parts already delivered are not repeated. A rate-limit reply waits the
// interval Telegram asks for instead.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	chunks := SplitMessage(text, MaxMessageLen)
	for i, chunk := range chunks {
		if err := t.sendChunkWithRetry(ctx, chunk, maxRetries); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (t *TelegramNotifier) sendChunkWithRetry(ctx context.Context, chunk string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.sendChunk(ctx, chunk)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			backoff = rl.RetryAfter
		}
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

func (t *TelegramNotifier) sendChunk(ctx context.Context, chunk string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.ChatID,
		Text:                  chunk,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&ar)
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: time.Duration(ar.Parameters.RetryAfter) * time.Second}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, ar.Description)
	}
	if decodeErr == nil && !ar.OK {
		return fmt.Errorf("telegram API error: %s", ar.Description)
	}
	return nil
}

// SplitMessage breaks text into chunks of at most limit UTF-16 units. Cuts fall on line
// breaks so the per-line HTML markup produced by the formatters stays balanced; a single
// line longer than limit is cut at rune boundaries.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			head, rest := cutUTF16(line, limit)
			chunks = append(chunks, head)
			line, n = rest, utf16Len(rest)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutUTF16 returns the longest prefix of s within limit units and the remainder.
func cutUTF16(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > limit {
			return s[:i], s[i:]
		}
		n += w
	}
	return s, ""
}
