package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"idx-swing-scanner/internal/scanlog"
)

// Writer turns a day's scan log into a CSV report, one row per symbol.
// The live loop rescans every poll, so only each symbol's latest entry
// survives into the report.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) csvPath(t time.Time) string {
	return filepath.Join(w.dir, t.Format("2006-01-02")+".csv")
}

// WriteDaily summarizes the given day. Returns the written path, or ""
// when the day holds no entries.
func (w *Writer) WriteDaily(t time.Time) (string, error) {
	entries, err := scanlog.ReadDay(t)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	// Latest entry per symbol wins.
	latest := map[string]scanlog.Entry{}
	for _, e := range entries {
		latest[e.Symbol] = e
	}

	rows := make([]scanlog.Entry, 0, len(latest))
	for _, e := range latest {
		rows = append(rows, e)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	outPath := w.csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	cw := csv.NewWriter(out)
	defer cw.Flush()

	headers := []string{"symbol", "decision", "score", "valid", "close", "rsi", "buy_area", "stop_loss", "target", "reasons"}
	if err := cw.Write(headers); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.Symbol,
			r.Decision,
			strconv.Itoa(r.Score),
			strconv.FormatBool(r.Valid),
			fmt.Sprintf("%.2f", r.Close),
			fmt.Sprintf("%.2f", r.RSI),
			r.BuyArea,
			fmt.Sprintf("%.2f", r.StopLoss),
			fmt.Sprintf("%.2f", r.Target),
			r.Reasons,
		}
		if err := cw.Write(rec); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}
