package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/types"
)

// Notifier sends actionable scan results to a Telegram chat via the Bot
// API. Missing credentials disable delivery without failing the scan.
type Notifier struct {
	httpClient *http.Client
	token      string
	chatID     string
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		chatID:     os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// Enabled reports whether credentials are configured.
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Notify delivers one scan result. Non-actionable results are ignored so
// callers can pass everything through.
func (n *Notifier) Notify(ctx context.Context, res types.ScanResult) error {
	if !res.Valid {
		return nil
	}
	if !n.Enabled() {
		logger.Warn(ctx, "Telegram credentials missing, alert skipped", "symbol", res.Symbol)
		return nil
	}

	msg := FormatAlert(res)

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.token)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram http %d", resp.StatusCode)
	}

	logger.Alert(ctx, res.Symbol, "telegram", string(res.Decision))
	return nil
}

// FormatAlert renders the alert text for one actionable result.
func FormatAlert(res types.ScanResult) string {
	ticker := strings.TrimSuffix(res.Symbol, ".JK")
	sentiment := res.NewsSummary
	if sentiment == "" {
		sentiment = "No News Found"
	}

	var b strings.Builder
	b.WriteString("🔥POTENTIAL TICKER DETECTED🔥\n\n")
	fmt.Fprintf(&b, "Stock   : $%s\n", ticker)
	fmt.Fprintf(&b, "Score   : %d/100\n", res.Score)
	fmt.Fprintf(&b, "Decision: %s\n", res.Decision)
	fmt.Fprintf(&b, "Status  : %s\n\n", res.Reasons)
	b.WriteString("📌 Details:\n")
	fmt.Fprintf(&b, "• Trend  : %s\n", res.Trend)
	fmt.Fprintf(&b, "• RSI    : %.1f\n", res.RSI)
	fmt.Fprintf(&b, "• Volume : %.0f (Avg: %.0f)\n\n", res.Vol, res.VolMA)
	b.WriteString("🎯 Plan:\n")
	fmt.Fprintf(&b, "• Buy    : %s\n", res.Plan.BuyArea())
	fmt.Fprintf(&b, "• Stop   : %.0f\n", res.Plan.StopLoss)
	fmt.Fprintf(&b, "• Target : %.0f\n", res.Plan.Target)
	fmt.Fprintf(&b, "• Risk   : %.2f%%\n", res.Plan.RiskPct)
	fmt.Fprintf(&b, "• Reward : %.2f%%\n\n", res.Plan.RewardPct)
	b.WriteString("🤖 Sentiment Analysis:\n")
	b.WriteString(sentiment)
	b.WriteString("\n\n⚠️ Always manage risk.\n")
	fmt.Fprintf(&b, "⏰ %s", time.Now().Format("2006-01-02 03:04 PM"))
	return b.String()
}
