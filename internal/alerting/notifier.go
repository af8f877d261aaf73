package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Mover is one series whose 7-day change crossed the alert threshold.
type Mover struct {
	Region      string
	Commodity   string
	Unit        string
	LatestPrice decimal.Decimal
	Change7dPct decimal.Decimal
}

// Notification summarises the big movers of one pipeline run.
type Notification struct {
	RunDate      time.Time
	ThresholdPct decimal.Decimal
	Movers       []Mover
}

// Notifier delivers run notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify sends the mover summary via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Time("run_date", note.RunDate).
		Int("movers", len(note.Movers)).
		Msg("alert sent (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Presyo Tracker Alert]\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", note.RunDate.UTC().Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Movers over ±%s%% in 7 days:\n", note.ThresholdPct.StringFixed(1)))
	for _, mover := range note.Movers {
		builder.WriteString(fmt.Sprintf(
			"%s / %s: ₱%s per %s (%s%%)\n",
			mover.Region,
			mover.Commodity,
			mover.LatestPrice.StringFixed(2),
			mover.Unit,
			mover.Change7dPct.StringFixed(2),
		))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
