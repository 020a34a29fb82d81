package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeposit_NewWithdrawal(t *testing.T) {
	key := PeriodKey{Type: PeriodTypeMonthly, Start: date(2024, time.March, 1), End: date(2024, time.March, 31)}

	d, err := NewDeposit(decimal.NewFromInt(1000), key, "alice", "reserve")
	require.NoError(t, err)
	assert.True(t, d.IsDeposit())
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(1000)))

	w, err := NewWithdrawal(decimal.NewFromInt(300), key, "alice", "claim")
	require.NoError(t, err)
	assert.False(t, w.IsDeposit())
	assert.True(t, w.Amount.Equal(decimal.NewFromInt(-300)))

	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err = NewDeposit(amt, key, "alice", "")
		assert.Error(t, err)
		_, err = NewWithdrawal(amt, key, "alice", "")
		assert.Error(t, err)
	}
}

func TestSumEntries_OrderIndependent(t *testing.T) {
	key := PeriodKey{Type: PeriodTypeCustom, Start: date(2024, time.March, 1), End: date(2024, time.March, 1)}
	var entries []BankSavingsEntry
	for i := 1; i <= 20; i++ {
		amount := decimal.NewFromFloat(float64(i) * 12.34)
		var e *BankSavingsEntry
		var err error
		if i%3 == 0 {
			e, err = NewWithdrawal(amount, key, "alice", "")
		} else {
			e, err = NewDeposit(amount, key, "alice", "")
		}
		require.NoError(t, err)
		entries = append(entries, *e)
	}

	want := SumEntries(entries)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]BankSavingsEntry(nil), entries...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.True(t, want.Equal(SumEntries(shuffled)))
	}
}
