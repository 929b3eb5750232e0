package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"idx-swing-scanner/internal/logger"
)

// Fetcher collects recent headlines for an IDX-listed symbol. The primary
// source is the exchange's own announcement API; public financial news
// sites are scraped as a fallback when the exchange returns nothing.
type Fetcher struct {
	httpClient  *http.Client
	sources     []NewsSource
	timeout     time.Duration
	announceURL string
}

// NewsSource defines a scraped news source configuration
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g. "/search?q={symbol}"
	Selectors  ArticleSelectors
	RateLimit  time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	PublishedAt      string
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient:  &http.Client{Timeout: timeout},
		sources:     getDefaultSources(),
		timeout:     timeout,
		announceURL: "https://idx.co.id/primary/ListedCompany/GetAnnouncement",
	}
}

// getDefaultSources returns the Indonesian financial news sites to scrape
func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "Bisnis",
			BaseURL:    "https://search.bisnis.com",
			SearchPath: "/?q={symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.col-sm-8 ul li",
				Title:            "h2 a",
				PublishedAt:      "span.wktu",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "Kontan",
			BaseURL:    "https://www.kontan.co.id",
			SearchPath: "/search/?search={symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.list-berita div.sp-hl",
				Title:            "h1 a, h2 a",
				PublishedAt:      "span.font-gray",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "EmitenNews",
			BaseURL:    "https://www.emitennews.com",
			SearchPath: "/search?q={symbol}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.news-item",
				Title:            "a.news-title",
				PublishedAt:      "span.news-date",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Headlines returns up to max recent headline strings for the symbol,
// newest first, formatted "[Source] date - title".
func (f *Fetcher) Headlines(ctx context.Context, symbol string, days, max int) ([]string, error) {
	headlines, err := f.fetchExchangeAnnouncements(ctx, symbol, days, max)
	if err != nil {
		logger.Warn(ctx, "Exchange announcement fetch failed", "symbol", symbol, "error", err)
	}

	if len(headlines) < max {
		scraped := f.scrapeSources(ctx, symbol, max-len(headlines))
		headlines = append(headlines, scraped...)
	}

	if len(headlines) > max {
		headlines = headlines[:max]
	}
	return headlines, nil
}

// announcementReply mirrors the fields we need from the exchange payload.
type announcementReply struct {
	Replies []struct {
		Pengumuman struct {
			JudulPengumuman string `json:"JudulPengumuman"`
			TglPengumuman   string `json:"TglPengumuman"`
		} `json:"pengumuman"`
	} `json:"Replies"`
}

// fetchExchangeAnnouncements queries the IDX listed-company announcement API.
func (f *Fetcher) fetchExchangeAnnouncements(ctx context.Context, symbol string, days, max int) ([]string, error) {
	code := strings.TrimSuffix(symbol, ".JK")
	now := time.Now()
	from := now.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("kodeEmiten", code)
	q.Set("emitenType", "*")
	q.Set("indexFrom", "0")
	q.Set("pageSize", fmt.Sprintf("%d", max))
	q.Set("dateFrom", from.Format("20060102"))
	q.Set("dateTo", now.Format("20060102"))
	q.Set("lang", "id")

	endpoint := f.announceURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://idx.co.id/id/perusahaan-tercatat/keterbukaan-informasi/")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("announcement api http %d", resp.StatusCode)
	}

	var reply announcementReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, err
	}

	headlines := make([]string, 0, len(reply.Replies))
	for _, r := range reply.Replies {
		title := r.Pengumuman.JudulPengumuman
		if title == "" {
			continue
		}
		date := r.Pengumuman.TglPengumuman
		if len(date) > 10 {
			date = date[:10]
		}
		headlines = append(headlines, fmt.Sprintf("[Official] %s - %s", date, title))
	}
	return headlines, nil
}

// scrapeSources walks the configured news sites and collects headline text.
// A failing source is skipped; scraping never fails the whole fetch.
func (f *Fetcher) scrapeSources(ctx context.Context, symbol string, max int) []string {
	code := strings.TrimSuffix(symbol, ".JK")
	headlines := []string{}

	for _, source := range f.sources {
		if len(headlines) >= max {
			break
		}
		got, err := f.scrapeSource(ctx, source, code, max-len(headlines))
		if err != nil {
			logger.Warn(ctx, "News source scrape failed", "source", source.Name, "symbol", symbol, "error", err)
			continue
		}
		headlines = append(headlines, got...)
	}
	return headlines
}

func (f *Fetcher) scrapeSource(ctx context.Context, source NewsSource, code string, max int) ([]string, error) {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(f.timeout)
	c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: source.RateLimit})

	headlines := []string{}
	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(headlines) >= max {
			return
		}
		// e.DOM is a goquery selection; selector lists need its Find.
		title := strings.TrimSpace(e.DOM.Find(source.Selectors.Title).First().Text())
		if title == "" {
			return
		}
		date := strings.TrimSpace(e.DOM.Find(source.Selectors.PublishedAt).First().Text())
		if date != "" {
			headlines = append(headlines, fmt.Sprintf("[%s] %s - %s", source.Name, date, title))
		} else {
			headlines = append(headlines, fmt.Sprintf("[%s] %s", source.Name, title))
		}
	})

	var scrapeErr error
	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", url.QueryEscape(code))
	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}
	c.Wait()

	if scrapeErr != nil && len(headlines) == 0 {
		return nil, scrapeErr
	}
	return headlines, nil
}
