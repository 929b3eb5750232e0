package scanlog

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"idx-swing-scanner/internal/types"
)

var mu sync.Mutex

// Entry is one scanned symbol as appended to the daily JSONL log.
type Entry struct {
	Time     string  `json:"time"`
	Symbol   string  `json:"symbol"`
	Decision string  `json:"decision"`
	Score    int     `json:"score"`
	Valid    bool    `json:"valid"`
	Reasons  string  `json:"reasons"`
	Close    float64 `json:"close"`
	RSI      float64 `json:"rsi"`
	BuyArea  string  `json:"buy_area,omitempty"`
	StopLoss float64 `json:"stop_loss,omitempty"`
	Target   float64 `json:"target,omitempty"`
}

func logDir() string {
	if v := os.Getenv("SCANNER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func wibNow() time.Time { return time.Now().In(time.FixedZone("WIB", 25200)) }

func dailyFilepath(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

// Append records a scan result in today's log file.
func Append(res types.ScanResult) error {
	mu.Lock()
	defer mu.Unlock()
	now := wibNow()
	e := Entry{
		Time:     now.Format("2006-01-02 15:04:05"),
		Symbol:   res.Symbol,
		Decision: string(res.Decision),
		Score:    res.Score,
		Valid:    res.Valid,
		Reasons:  res.Reasons,
		Close:    res.Close,
		RSI:      res.RSI,
	}
	if res.Valid {
		e.BuyArea = res.Plan.BuyArea()
		e.StopLoss = res.Plan.StopLoss
		e.Target = res.Plan.Target
	}
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns all entries logged on the given day.
func ReadDay(t time.Time) ([]Entry, error) {
	b, err := os.ReadFile(dailyFilepath(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(b))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CompressOlder gzips log files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
