package ledger

import (
	"fmt"
	"time"

	"github.com/opsconsole/backend/internal/domain/shared"
)

// Granularity is the window a caller asks figures for
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
	GranularityAllTime Granularity = "all_time"
)

// IsValid checks if the granularity is supported for aggregation and claims
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityMonthly, GranularityYearly, GranularityAllTime:
		return true
	}
	return false
}

// ParseGranularity parses a granularity, defaulting to monthly when empty
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return GranularityMonthly, nil
	}
	g := Granularity(s)
	if !g.IsValid() {
		return "", shared.NewValidationError(shared.CodeInvalidPeriod,
			fmt.Sprintf("unsupported granularity %q (use monthly, yearly or all_time)", s))
	}
	return g, nil
}

// PeriodType is the persisted tag of a ledger row's period key
type PeriodType string

const (
	PeriodTypeMonthly PeriodType = "monthly"
	PeriodTypeYearly  PeriodType = "yearly"
	PeriodTypeCustom  PeriodType = "custom"
)

// PeriodKey identifies the window a bank-savings entry or distribution record
// belongs to. Start and End are calendar dates (UTC midnight), both inclusive.
type PeriodKey struct {
	Type  PeriodType
	Start time.Time
	End   time.Time
}

// String renders the key for notes and log fields
func (k PeriodKey) String() string {
	return fmt.Sprintf("%s %s..%s", k.Type, k.Start.Format(DateLayout), k.End.Format(DateLayout))
}

// DateLayout is the wire and display format of ledger dates
const DateLayout = "2006-01-02"

// Period is a resolved aggregation window
type Period struct {
	Granularity Granularity
	Start       time.Time
	End         time.Time
}

// ResolvePeriod turns a granularity and reference date into concrete bounds.
// For all-time the window opens at earliest (the first order timestamp) or at
// asOf when there is no history.
func ResolvePeriod(g Granularity, asOf time.Time, earliest *time.Time) (Period, error) {
	day := Date(asOf)
	switch g {
	case GranularityMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{Granularity: g, Start: start, End: start.AddDate(0, 1, -1)}, nil
	case GranularityYearly:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Period{Granularity: g, Start: start, End: start.AddDate(1, 0, -1)}, nil
	case GranularityAllTime:
		start := day
		if earliest != nil && Date(*earliest).Before(day) {
			start = Date(*earliest)
		}
		return Period{Granularity: g, Start: start, End: day}, nil
	default:
		return Period{}, shared.NewValidationError(shared.CodeInvalidPeriod, fmt.Sprintf("unsupported granularity %q", g))
	}
}

// Key returns the ledger key of the period. All-time activity is stamped as a
// custom period on txDate so each transaction keeps its own row.
func (p Period) Key(txDate time.Time) PeriodKey {
	switch p.Granularity {
	case GranularityMonthly:
		return PeriodKey{Type: PeriodTypeMonthly, Start: p.Start, End: p.End}
	case GranularityYearly:
		return PeriodKey{Type: PeriodTypeYearly, Start: p.Start, End: p.End}
	default:
		d := Date(txDate)
		return PeriodKey{Type: PeriodTypeCustom, Start: d, End: d}
	}
}

// IsAllTime reports whether the period spans the whole history
func (p Period) IsAllTime() bool {
	return p.Granularity == GranularityAllTime
}

// EndExclusive is the first instant after the period, for timestamp range filters
func (p Period) EndExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

// Date truncates t to its UTC calendar date
func Date(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
