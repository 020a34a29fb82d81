package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// serviceOptions carries the collaborators every ledger service shares
type serviceOptions struct {
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
	now     func() time.Time
}

// Option configures a ledger service
type Option func(*serviceOptions)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches ledger metrics. Without it nothing is recorded.
func WithMetrics(metrics *telemetry.LedgerMetrics) Option {
	return func(o *serviceOptions) {
		o.metrics = metrics
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// parseDate parses a YYYY-MM-DD field. An empty value returns fallback.
func parseDate(field, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ledger.Date(fallback), nil
	}
	t, err := time.ParseInLocation(ledger.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, shared.NewValidationError(shared.CodeValidation,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return t, nil
}

// parseDateRange parses optional from/to bounds
func parseDateRange(from, to string) (ledger.DateRange, error) {
	var r ledger.DateRange
	if strings.TrimSpace(from) != "" {
		t, err := parseDate("from", from, time.Time{})
		if err != nil {
			return r, err
		}
		r.From = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := parseDate("to", to, time.Time{})
		if err != nil {
			return r, err
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, shared.NewValidationError(shared.CodeValidation, "to must not be before from")
	}
	return r, nil
}
