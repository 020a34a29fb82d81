package persistence

import (
	"context"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDistributionRecordRepository implements ledger.DistributionRecordRepository using GORM
type GormDistributionRecordRepository struct {
	db *gorm.DB
}

// NewGormDistributionRecordRepository creates a new GormDistributionRecordRepository
func NewGormDistributionRecordRepository(db *gorm.DB) *GormDistributionRecordRepository {
	return &GormDistributionRecordRepository{db: db}
}

// FindForPeriod returns the records of a period keyed by owner name
func (r *GormDistributionRecordRepository) FindForPeriod(ctx context.Context, key ledger.PeriodKey) (map[string]*ledger.DistributionRecord, error) {
	var rows []models.DistributionRecordModel
	if err := r.db.WithContext(ctx).
		Where("period_type = ? AND period_start = ? AND period_end = ?", key.Type, key.Start, key.End).
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "find distribution records")
	}

	out := make(map[string]*ledger.DistributionRecord, len(rows))
	for i := range rows {
		out[rows[i].OwnerName] = rows[i].ToDomain()
	}
	return out, nil
}

// UpsertClaim inserts the claim or, when the owner already has a record for
// the period, marks it claimed while keeping the first claimant's timestamp,
// actor and token. Snapshot amounts of an existing record are never rewritten.
func (r *GormDistributionRecordRepository) UpsertClaim(ctx context.Context, record *ledger.DistributionRecord) (*ledger.DistributionRecord, error) {
	model := models.DistributionRecordModelFromDomain(record)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "owner_name"},
				{Name: "period_type"},
				{Name: "period_start"},
				{Name: "period_end"},
			},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "is_claimed"}, Value: true},
				{Column: clause.Column{Name: "claimed_at"}, Value: gorm.Expr("COALESCE(distribution_records.claimed_at, excluded.claimed_at)")},
				{Column: clause.Column{Name: "claimed_by"}, Value: gorm.Expr("COALESCE(distribution_records.claimed_by, excluded.claimed_by)")},
				{Column: clause.Column{Name: "claim_token"}, Value: gorm.Expr("COALESCE(distribution_records.claim_token, excluded.claim_token)")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
		}).Create(model).Error; err != nil {
			return err
		}

		var stored models.DistributionRecordModel
		if err := tx.Where("owner_name = ? AND period_type = ? AND period_start = ? AND period_end = ?",
			record.OwnerName, record.Period.Type, record.Period.Start, record.Period.End).
			Take(&stored).Error; err != nil {
			return err
		}
		model = &stored
		return nil
	})
	if err != nil {
		return nil, translateError(err, "upsert distribution claim")
	}
	return model.ToDomain(), nil
}

var _ ledger.DistributionRecordRepository = (*GormDistributionRecordRepository)(nil)
