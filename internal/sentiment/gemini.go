package sentiment

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/store"
	"idx-swing-scanner/internal/trace"
	"idx-swing-scanner/internal/types"
)

// HeadlineSource supplies recent news headlines for a symbol.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, days, max int) ([]string, error)
}

// GeminiOracle asks a Gemini model to judge recent headlines on a
// -100..+100 scale. It is slow and rate limited; callers must gate and
// budget their calls.
type GeminiOracle struct {
	client    *genai.Client
	model     string
	temp      float32
	timeout   time.Duration
	headlines HeadlineSource
	lookback  int
	maxLines  int
}

func NewGeminiOracle(cfg *store.Config, headlines HeadlineSource) (*GeminiOracle, error) {
	apiKey := os.Getenv("GENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GENAI_API_KEY missing")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiOracle{
		client:    client,
		model:     cfg.LLM.Model,
		temp:      cfg.LLM.Temperature,
		timeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		headlines: headlines,
		lookback:  cfg.News.LookbackDays,
		maxLines:  cfg.News.MaxHeadlines,
	}, nil
}

// Sentiment fetches headlines and asks the model for a single bounded
// integer. Any failure degrades to the neutral assessment with an error so
// the caller can decide how loudly to log it.
func (o *GeminiOracle) Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-sentiment")
	defer span.End()

	headlines, err := o.headlines.Headlines(ctx, symbol, o.lookback, o.maxLines)
	if err != nil {
		return types.SentimentAssessment{}, fmt.Errorf("fetch headlines: %w", err)
	}
	if len(headlines) == 0 {
		return types.SentimentAssessment{Explanation: "No Headlines Found"}, nil
	}

	prompt := buildPrompt(symbol, headlines)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(o.temp),
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}

	resp, err := o.client.Models.GenerateContent(callCtx, o.model, contents, config)
	if err != nil {
		return types.SentimentAssessment{}, fmt.Errorf("gemini generate: %w", err)
	}

	var out strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	if out.Len() == 0 {
		return types.SentimentAssessment{}, fmt.Errorf("no response generated from model")
	}

	score := ParseScore(out.String())
	logger.Debug(ctx, "Gemini sentiment received", "symbol", symbol, "score", score, "headlines", len(headlines))

	return types.SentimentAssessment{
		Score:       score,
		Explanation: fmt.Sprintf("Based on %d headlines.", len(headlines)),
	}, nil
}

func buildPrompt(symbol string, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the sentiment of the following news headlines for the stock '%s'.\nHeadlines:\n", symbol)
	for _, h := range headlines {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	b.WriteString("\nProvide a Sentiment Score from -100 (Extremely Negative/Bankruptcy risk) to +100 (Extremely Positive/Growth/Dividends).\n0 is Neutral.\nReturn ONLY the number.")
	return b.String()
}

// ParseScore extracts the first signed integer from a model reply and
// clamps it to [-100, 100]. Anything unparseable is neutral.
func ParseScore(text string) int {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if r >= '0' && r <= '9' || (r == '-' && digits.Len() == 0) {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	if n > 100 {
		return 100
	}
	if n < -100 {
		return -100
	}
	return n
}
