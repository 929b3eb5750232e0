package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string `yaml:"mode"`
	PollSeconds int    `yaml:"poll_seconds"`
	Timeframe   string `yaml:"timeframe"`
	HistoryDays int    `yaml:"history_days"`

	Universe struct {
		Static      []string `yaml:"static"`
		Dynamic     bool     `yaml:"dynamic"`
		DynamicURL  string   `yaml:"dynamic_url"`
		Suffix      string   `yaml:"suffix"`
		MaxParallel int      `yaml:"max_parallel"`
	} `yaml:"universe"`

	Market struct {
		TimezoneOffsetHours int    `yaml:"timezone_offset_hours"`
		OpenTime            string `yaml:"open_time"`
		CloseTime           string `yaml:"close_time"`
	} `yaml:"market"`

	// Scoring holds every threshold the confluence engine uses so tuning
	// never requires touching algorithm code.
	Scoring struct {
		FlowAccumThreshold       float64 `yaml:"flow_accum_threshold"`
		FlowCirculationThreshold float64 `yaml:"flow_circulation_threshold"`
		WhaleAccumThreshold      float64 `yaml:"whale_accum_threshold"`
		MajorBuyAccumThreshold   float64 `yaml:"major_buy_accum_threshold"`
		SmartMoneyVolRatio       float64 `yaml:"smart_money_vol_ratio"`
		WeakTechCutoff           int     `yaml:"weak_tech_cutoff"`
		SentimentGateScore       int     `yaml:"sentiment_gate_score"`
		SentimentBonus           int     `yaml:"sentiment_bonus"`
		SentimentTrigger         int     `yaml:"sentiment_trigger"`
		WatchlistScore           int     `yaml:"watchlist_score"`
		StrongBuyScore           int     `yaml:"strong_buy_score"`
		BigAccumFlowScore        int     `yaml:"big_accum_flow_score"`
	} `yaml:"scoring"`

	Stop struct {
		Mode          string  `yaml:"mode"` // ATR or PCT
		Pct           float64 `yaml:"pct"`
		ATRMult       float64 `yaml:"atr_mult"`
		TargetPct     float64 `yaml:"target_pct"`
		TargetATRMult float64 `yaml:"target_atr_mult"`
	} `yaml:"stop"`

	Indicators struct {
		MAFast      int `yaml:"ma_fast"`
		MASlow      int `yaml:"ma_slow"`
		RSIPeriod   int `yaml:"rsi_period"`
		VolMAPeriod int `yaml:"vol_ma_period"`
		ATRPeriod   int `yaml:"atr_period"`
		SRLookback  int `yaml:"sr_lookback"`
	} `yaml:"indicators"`

	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	News struct {
		MaxHeadlines   int `yaml:"max_headlines"`
		LookbackDays   int `yaml:"lookback_days"`
		ScraperTimeout int `yaml:"scraper_timeout_seconds"`
	} `yaml:"news"`

	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
}

func (c *Config) Validate() error {
	if c.Mode != "RUN_NOW" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'RUN_NOW' or 'LIVE'", c.Mode)
	}
	if len(c.Universe.Static) == 0 && !c.Universe.Dynamic {
		return errors.New("universe.static cannot be empty when universe.dynamic is off")
	}
	if c.Stop.Mode != "ATR" && c.Stop.Mode != "PCT" {
		return fmt.Errorf("stop.mode must be 'ATR' or 'PCT', got '%s'", c.Stop.Mode)
	}
	if c.Scoring.FlowAccumThreshold <= 0 || c.Scoring.FlowCirculationThreshold <= 0 {
		return errors.New("scoring flow thresholds must be positive")
	}
	if c.Scoring.WatchlistScore >= c.Scoring.StrongBuyScore {
		return fmt.Errorf("scoring.watchlist_score (%d) must be below scoring.strong_buy_score (%d)",
			c.Scoring.WatchlistScore, c.Scoring.StrongBuyScore)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// applyDefaults fills in the canonical strategy numbers where the file is silent.
func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "RUN_NOW"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.Timeframe == "" {
		c.Timeframe = "1d"
	}
	if c.HistoryDays == 0 {
		c.HistoryDays = 365
	}
	if c.Universe.MaxParallel == 0 {
		c.Universe.MaxParallel = 4
	}
	if c.Universe.Suffix == "" {
		c.Universe.Suffix = ".JK"
	}
	if c.Market.TimezoneOffsetHours == 0 {
		c.Market.TimezoneOffsetHours = 7 // WIB
	}
	if c.Market.OpenTime == "" {
		c.Market.OpenTime = "08:00"
	}
	if c.Market.CloseTime == "" {
		c.Market.CloseTime = "16:00"
	}

	s := &c.Scoring
	if s.FlowAccumThreshold == 0 {
		s.FlowAccumThreshold = 500_000_000
	}
	if s.FlowCirculationThreshold == 0 {
		s.FlowCirculationThreshold = 100_000_000
	}
	if s.WhaleAccumThreshold == 0 {
		s.WhaleAccumThreshold = 50_000_000_000
	}
	if s.MajorBuyAccumThreshold == 0 {
		s.MajorBuyAccumThreshold = 5_000_000_000
	}
	if s.SmartMoneyVolRatio == 0 {
		s.SmartMoneyVolRatio = 1.5
	}
	if s.WeakTechCutoff == 0 {
		s.WeakTechCutoff = 15
	}
	if s.SentimentGateScore == 0 {
		s.SentimentGateScore = 45
	}
	if s.SentimentBonus == 0 {
		s.SentimentBonus = 20
	}
	if s.SentimentTrigger == 0 {
		s.SentimentTrigger = 20
	}
	if s.WatchlistScore == 0 {
		s.WatchlistScore = 65
	}
	if s.StrongBuyScore == 0 {
		s.StrongBuyScore = 85
	}
	if s.BigAccumFlowScore == 0 {
		s.BigAccumFlowScore = 30
	}

	if c.Stop.Mode == "" {
		c.Stop.Mode = "ATR"
	}
	if c.Stop.Pct == 0 {
		c.Stop.Pct = 5.0
	}
	if c.Stop.ATRMult == 0 {
		c.Stop.ATRMult = 2.0
	}
	if c.Stop.TargetPct == 0 {
		c.Stop.TargetPct = 5.0
	}
	if c.Stop.TargetATRMult == 0 {
		c.Stop.TargetATRMult = 3.0
	}

	i := &c.Indicators
	if i.MAFast == 0 {
		i.MAFast = 20
	}
	if i.MASlow == 0 {
		i.MASlow = 50
	}
	if i.RSIPeriod == 0 {
		i.RSIPeriod = 14
	}
	if i.VolMAPeriod == 0 {
		i.VolMAPeriod = 20
	}
	if i.ATRPeriod == 0 {
		i.ATRPeriod = 14
	}
	if i.SRLookback == 0 {
		i.SRLookback = 20
	}

	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 10
	}
	if c.News.LookbackDays == 0 {
		c.News.LookbackDays = 7
	}
	if c.News.ScraperTimeout == 0 {
		c.News.ScraperTimeout = 30
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
}
