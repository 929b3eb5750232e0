package scan

import (
	"fmt"
	"time"

	"idx-swing-scanner/internal/store"
)

// Calendar answers whether the exchange is open at a given instant.
// IDX trades Monday through Friday, 08:00-16:00 WIB by default.
type Calendar struct {
	loc       *time.Location
	openMins  int
	closeMins int
}

func NewCalendar(cfg *store.Config) (*Calendar, error) {
	open, err := parseClock(cfg.Market.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("market.open_time: %w", err)
	}
	close, err := parseClock(cfg.Market.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("market.close_time: %w", err)
	}
	if close <= open {
		return nil, fmt.Errorf("market close %q must be after open %q", cfg.Market.CloseTime, cfg.Market.OpenTime)
	}
	offset := cfg.Market.TimezoneOffsetHours
	return &Calendar{
		loc:       time.FixedZone("WIB", offset*3600),
		openMins:  open,
		closeMins: close,
	}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Now returns the current time in the market's timezone.
func (c *Calendar) Now() time.Time {
	return time.Now().In(c.loc)
}

// IsOpen reports whether the market trades at t, with a short status for
// operator logs.
func (c *Calendar) IsOpen(t time.Time) (bool, string) {
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false, "Weekend - Market Closed"
	}
	mins := local.Hour()*60 + local.Minute()
	if mins >= c.openMins && mins <= c.closeMins {
		return true, "Market Open"
	}
	return false, "Outside Trading Hours"
}
