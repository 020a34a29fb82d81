package printing

import (
	"bytes"
	"testing"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchDistribution(t *testing.T) ledger.Distribution {
	t.Helper()
	pool, err := ledger.NewOwnerPool([]string{"Alice", "Bob", "Carol"}, []string{"Carol"})
	require.NoError(t, err)
	sel, err := pool.Select([]string{"Alice", "Bob"})
	require.NoError(t, err)

	period, err := ledger.ResolvePeriod(ledger.GranularityMonthly, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	summary := ledger.NewPeriodSummary(period,
		decimal.NewFromInt(10000), decimal.NewFromInt(2000), decimal.NewFromInt(3000))

	return ledger.ComputeDistribution(pool, sel, summary, decimal.NewFromInt(1000),
		map[string]decimal.Decimal{"Alice": decimal.NewFromInt(500)}, nil)
}

func TestStatementRenderer_Render(t *testing.T) {
	r := NewStatementRenderer(StatementConfig{Title: "Ops Console"})

	var buf bytes.Buffer
	err := r.Render(&buf, marchDistribution(t), time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestStatementRenderer_ManyOwnersPaginates(t *testing.T) {
	names := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		names = append(names, "Owner"+decimal.NewFromInt(int64(i)).String())
	}
	pool, err := ledger.NewOwnerPool(names, nil)
	require.NoError(t, err)
	sel, err := pool.Select(names)
	require.NoError(t, err)
	period, err := ledger.ResolvePeriod(ledger.GranularityYearly, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	dist := ledger.ComputeDistribution(pool, sel,
		ledger.NewPeriodSummary(period, decimal.NewFromInt(60000), decimal.Zero, decimal.Zero),
		decimal.Zero, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, NewStatementRenderer(StatementConfig{}).Render(&buf, dist, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestStatementRenderer_InvalidPaperSize(t *testing.T) {
	r := NewStatementRenderer(StatementConfig{PaperSize: "B7"})

	var buf bytes.Buffer
	err := r.Render(&buf, marchDistribution(t), time.Now())
	require.Error(t, err)

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidPaperSize, re.Code)
	assert.Zero(t, buf.Len())
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"2500", "2,500.00"},
		{"1234567.891", "1,234,567.89"},
		{"-750.5", "-750.50"},
		{"-0.001", "0.00"},
		{"999", "999.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Run("error without cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderFailed, "render failed", nil)
		assert.Equal(t, "render failed", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("error with cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderFailed, "render failed", assert.AnError)
		assert.Contains(t, err.Error(), assert.AnError.Error())
		assert.Equal(t, assert.AnError, err.Unwrap())
	})
}
