package ledger

import (
	"fmt"
	"time"

	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OwnerShare is one owner's line in a distribution
type OwnerShare struct {
	Owner           string
	Eligible        bool
	Selected        bool
	Percentage      decimal.Decimal
	GrossShare      decimal.Decimal
	PersonalPending decimal.Decimal
	NetShare        decimal.Decimal
	Claimed         bool
	ClaimedAt       *time.Time
	Record          *DistributionRecord
}

// CanClaim reports whether a claim for this share would be accepted
func (s OwnerShare) CanClaim() bool {
	return s.Selected && s.Eligible && !s.Claimed && s.NetShare.IsPositive()
}

// CheckClaimable returns the validation error that blocks a claim, if any
func (s OwnerShare) CheckClaimable() error {
	if !s.Eligible {
		return shared.NewValidationError(shared.CodeIneligibleOwner,
			fmt.Sprintf("owner %q is not eligible for distributions", s.Owner))
	}
	if !s.Selected {
		return shared.NewValidationError(shared.CodeOwnerNotSelected,
			fmt.Sprintf("owner %q is not part of the selected split", s.Owner))
	}
	if !s.NetShare.IsPositive() {
		return shared.NewValidationError(shared.CodeNothingToClaim,
			fmt.Sprintf("net share of %q is %s; nothing to claim", s.Owner, s.NetShare.StringFixed(2)))
	}
	return nil
}

// Distribution is the split of one period's net income among the selected owners
type Distribution struct {
	Summary     PeriodSummary
	BankBalance decimal.Decimal
	// Available is net income minus the savings reserve. Gross shares are
	// split from NetIncome, not from Available.
	Available decimal.Decimal
	Selected  []string
	Shares    []OwnerShare
}

// Share returns the line for owner
func (d Distribution) Share(owner string) (OwnerShare, bool) {
	for _, s := range d.Shares {
		if s.Owner == owner {
			return s, true
		}
	}
	return OwnerShare{}, false
}

// ComputeDistribution splits summary.NetIncome equally among the selected
// owners. Every pool owner gets a line; unselected owners get zero.
// pending maps owner names to outstanding personal expenses and claims maps
// owner names to existing records of the period.
func ComputeDistribution(
	pool *OwnerPool,
	sel Selection,
	summary PeriodSummary,
	bankBalance decimal.Decimal,
	pending map[string]decimal.Decimal,
	claims map[string]*DistributionRecord,
) Distribution {
	n := sel.Len()
	gross := decimal.Zero
	pct := decimal.Zero
	if n > 0 {
		count := decimal.NewFromInt(int64(n))
		gross = summary.NetIncome.Div(count)
		pct = hundred.Div(count)
	}

	dist := Distribution{
		Summary:     summary,
		BankBalance: bankBalance,
		Available:   summary.NetIncome.Sub(bankBalance),
		Selected:    sel.Names(),
	}

	for _, owner := range pool.Owners() {
		share := OwnerShare{
			Owner:           owner.Name,
			Eligible:        owner.Eligible,
			Selected:        sel.Has(owner.Name),
			Percentage:      decimal.Zero,
			GrossShare:      decimal.Zero,
			PersonalPending: decimal.Zero,
		}
		if p, ok := pending[owner.Name]; ok {
			share.PersonalPending = p
		}
		if share.Selected {
			share.Percentage = pct
			share.GrossShare = gross
		}
		share.NetShare = share.GrossShare.Sub(share.PersonalPending)

		if rec, ok := claims[owner.Name]; ok && rec != nil {
			share.Record = rec
			share.Claimed = rec.IsClaimed
			share.ClaimedAt = rec.ClaimedAt
		}
		dist.Shares = append(dist.Shares, share)
	}
	return dist
}
