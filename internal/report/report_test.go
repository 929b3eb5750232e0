package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"idx-swing-scanner/internal/scanlog"
	"idx-swing-scanner/internal/types"
)

func TestWriteDaily(t *testing.T) {
	t.Setenv("SCANNER_LOG_DIR", t.TempDir())

	// Two polls for BBCA within the day: the later entry must win.
	for _, res := range []types.ScanResult{
		{Symbol: "BBCA.JK", Decision: types.DecisionWatchlist, Score: 65, Valid: true,
			Close: 1050, Plan: types.TradePlan{BuyAreaLow: 1050, BuyAreaHigh: 1071, StopLoss: 1010, Target: 1110}},
		{Symbol: "GOTO.JK", Decision: types.DecisionNoTrade, Score: 40},
		{Symbol: "BBCA.JK", Decision: types.DecisionStrongBuy, Score: 90, Valid: true,
			Close: 1060, Plan: types.TradePlan{BuyAreaLow: 1060, BuyAreaHigh: 1081, StopLoss: 1020, Target: 1120}},
	} {
		if err := scanlog.Append(res); err != nil {
			t.Fatal(err)
		}
	}

	w := NewWriter(t.TempDir())
	path, err := w.WriteDaily(time.Now().In(time.FixedZone("WIB", 25200)))
	if err != nil {
		t.Fatalf("Expected report written, got %v", err)
	}
	if path == "" {
		t.Fatal("Expected a report path")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Header plus one row per symbol.
	if len(rows) != 3 {
		t.Fatalf("Expected 3 csv rows, got %d", len(rows))
	}
	if rows[0][0] != "symbol" || rows[0][1] != "decision" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	// Sorted by score descending: BBCA's later 90 leads.
	if rows[1][0] != "BBCA.JK" || rows[1][1] != "STRONG BUY" || rows[1][2] != "90" {
		t.Errorf("Expected latest BBCA entry first, got %v", rows[1])
	}
	if rows[2][0] != "GOTO.JK" {
		t.Errorf("Expected GOTO second, got %v", rows[2])
	}
}

func TestWriteDailyEmptyDay(t *testing.T) {
	t.Setenv("SCANNER_LOG_DIR", t.TempDir())

	w := NewWriter(t.TempDir())
	path, err := w.WriteDaily(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected empty day to succeed, got %v", err)
	}
	if path != "" {
		t.Errorf("Expected no report for empty day, got %s", path)
	}

	if _, err := os.Stat(filepath.Join(w.dir, "2020-01-01.csv")); !os.IsNotExist(err) {
		t.Error("Expected no csv file created for empty day")
	}
}
