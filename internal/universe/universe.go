package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/store"
)

const defaultSourceURL = "https://raw.githubusercontent.com/nichsedge/idx-bei/master/data/companyDetailsByKodeEmiten.json"

// Provider resolves the list of symbols to scan. A dynamic fetch covers
// the full exchange listing; the static config list is the fallback so a
// dead source never blocks a scan.
type Provider struct {
	cfg        *store.Config
	httpClient *http.Client
	cacheFile  string
}

type cacheEnvelope struct {
	LastUpdated time.Time `json:"last_updated"`
	Symbols     []string  `json:"symbols"`
}

func NewProvider(cfg *store.Config) *Provider {
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cacheFile:  filepath.Join("data", "universe_cache.json"),
	}
}

// Symbols returns the scan universe. Dynamic mode fetches the exchange
// listing at most once per day (file cache); any failure falls back to
// the static list from config.
func (p *Provider) Symbols(ctx context.Context) []string {
	if !p.cfg.Universe.Dynamic {
		return p.cfg.Universe.Static
	}

	if cached, ok := p.readCache(); ok {
		logger.Debug(ctx, "Universe loaded from cache", "count", len(cached))
		return cached
	}

	symbols, err := p.fetch(ctx)
	if err != nil || len(symbols) == 0 {
		logger.Warn(ctx, "Dynamic universe fetch failed, using static list", "error", err)
		return p.cfg.Universe.Static
	}

	p.writeCache(symbols)
	logger.Info(ctx, "Universe fetched", "count", len(symbols))
	return symbols
}

func (p *Provider) fetch(ctx context.Context) ([]string, error) {
	srcURL := p.cfg.Universe.DynamicURL
	if srcURL == "" {
		srcURL = defaultSourceURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("universe source http %d", resp.StatusCode)
	}

	// Payload is a map keyed by ticker code.
	var listing map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(listing))
	for code := range listing {
		symbols = append(symbols, code+p.cfg.Universe.Suffix)
	}
	return symbols, nil
}

func (p *Provider) readCache() ([]string, bool) {
	b, err := os.ReadFile(p.cacheFile)
	if err != nil {
		return nil, false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, false
	}
	if time.Since(env.LastUpdated) >= 24*time.Hour || len(env.Symbols) == 0 {
		return nil, false
	}
	return env.Symbols, true
}

func (p *Provider) writeCache(symbols []string) {
	if err := os.MkdirAll(filepath.Dir(p.cacheFile), 0o755); err != nil {
		return
	}
	b, _ := json.Marshal(cacheEnvelope{LastUpdated: time.Now(), Symbols: symbols})
	_ = os.WriteFile(p.cacheFile, b, 0o644)
}
