package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/ta"
	"idx-swing-scanner/internal/types"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	chartPath        = "/v8/finance/chart/%s?range=%s&interval=%s"
	quoteSummaryPath = "/v10/finance/quoteSummary/%s?modules=summaryDetail,financialData,price"
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// YahooClient fetches daily candles and company fundamentals from the
// public Yahoo Finance endpoints. All calls share one token bucket so a
// parallel universe scan cannot hammer the API.
type YahooClient struct {
	httpClient *http.Client
	limiter    *RateLimiter
	baseURL    string
	rng        string
	interval   string
	windows    ta.Windows
}

func NewYahooClient(rng, interval string, windows ta.Windows) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    NewRateLimiter(5, 250*time.Millisecond),
		baseURL:    defaultBaseURL,
		rng:        rng,
		interval:   interval,
		windows:    windows,
	}
}

// chartResponse mirrors the slice of the chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// RecentCandles returns up to n recent daily candles, indicator-enriched,
// in ascending date order. A symbol with no data yields an empty slice,
// not an error: the caller maps that to NO DATA.
func (y *YahooClient) RecentCandles(ctx context.Context, symbol string, n int) ([]types.Candle, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := y.baseURL + fmt.Sprintf(chartPath, symbol, y.rng, y.interval)
	body, err := y.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("chart fetch %s: %w", symbol, err)
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("chart decode %s: %w", symbol, err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart api %s: %s", symbol, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := cr.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	candles := make([]types.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// Yahoo pads halted sessions with nulls; skip incomplete rows.
		if i >= len(quote.Close) || quote.Close[i] == nil || quote.Open[i] == nil ||
			quote.High[i] == nil || quote.Low[i] == nil {
			continue
		}
		vol := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		candles = append(candles, types.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
			Vol:   vol,
		})
	}

	if len(candles) > n {
		candles = candles[len(candles)-n:]
	}

	logger.Debug(ctx, "Candles fetched", "symbol", symbol, "count", len(candles))
	return ta.Enrich(candles, y.windows), nil
}

// rawValue is Yahoo's {raw, fmt} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
				MarketCap  rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ReturnOnEquity rawValue `json:"returnOnEquity"`
			} `json:"financialData"`
			Price struct {
				MarketCap rawValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fundamentals fetches market cap, trailing P/E and ROE. Missing fields
// stay zero; the screener treats zero as "no band matched".
func (y *YahooClient) Fundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return types.Fundamentals{}, err
	}

	endpoint := y.baseURL + fmt.Sprintf(quoteSummaryPath, symbol)
	body, err := y.get(ctx, endpoint)
	if err != nil {
		return types.Fundamentals{}, fmt.Errorf("fundamentals fetch %s: %w", symbol, err)
	}

	var qs quoteSummaryResponse
	if err := json.Unmarshal(body, &qs); err != nil {
		return types.Fundamentals{}, fmt.Errorf("fundamentals decode %s: %w", symbol, err)
	}
	if qs.QuoteSummary.Error != nil {
		return types.Fundamentals{}, fmt.Errorf("fundamentals api %s: %s", symbol, qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return types.Fundamentals{}, fmt.Errorf("fundamentals empty for %s", symbol)
	}

	r := qs.QuoteSummary.Result[0]
	mcap := r.SummaryDetail.MarketCap.Raw
	if mcap == 0 {
		mcap = r.Price.MarketCap.Raw
	}

	return types.Fundamentals{
		MarketCap:  mcap,
		TrailingPE: r.SummaryDetail.TrailingPE.Raw,
		ROE:        r.FinancialData.ReturnOnEquity.Raw,
	}, nil
}

func (y *YahooClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
