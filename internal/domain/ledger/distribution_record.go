package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DistributionRecord is the snapshot of an owner's share taken when it was
// claimed. There is at most one record per owner and period key.
type DistributionRecord struct {
	shared.BaseEntity
	OwnerName        string
	Period           PeriodKey
	ShareAmount      decimal.Decimal
	PersonalExpenses decimal.Decimal
	NetShare         decimal.Decimal
	IsClaimed        bool
	ClaimedAt        *time.Time
	ClaimedBy        *string
	// ClaimToken identifies the claim call that first wrote the record.
	ClaimToken uuid.UUID
}

// NewClaimRecord snapshots share as claimed by actor at now
func NewClaimRecord(share OwnerShare, key PeriodKey, actor string, now time.Time) *DistributionRecord {
	now = now.UTC()
	return &DistributionRecord{
		BaseEntity:       shared.NewBaseEntity(),
		OwnerName:        share.Owner,
		Period:           key,
		ShareAmount:      share.GrossShare,
		PersonalExpenses: share.PersonalPending,
		NetShare:         share.NetShare,
		IsClaimed:        true,
		ClaimedAt:        &now,
		ClaimedBy:        &actor,
		ClaimToken:       uuid.New(),
	}
}

// ClaimedWith reports whether the stored record was written by the claim
// that carried token. A mismatch means another caller claimed first.
func (r *DistributionRecord) ClaimedWith(token uuid.UUID) bool {
	return r.ClaimToken == token
}
