package persistence

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCostEntryRepository implements billing.CostEntryRepository using GORM.
// The ledger is append-only: entries are written once and never updated.
type GormCostEntryRepository struct {
	db *gorm.DB
}

// NewGormCostEntryRepository creates a new GormCostEntryRepository
func NewGormCostEntryRepository(db *gorm.DB) *GormCostEntryRepository {
	return &GormCostEntryRepository{db: db}
}

// Save appends a new cost ledger entry
func (r *GormCostEntryRepository) Save(ctx context.Context, entry *billing.CostEntry) error {
	var model CostEntryModel
	model.FromEntity(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindAllForOrg finds all cost entries for an organization
func (r *GormCostEntryRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.CostEntry, error) {
	var models []CostEntryModel
	query := r.db.WithContext(ctx).Model(&CostEntryModel{}).Where("org_id = ?", orgID)

	for key, value := range filter.Filters {
		switch key {
		case "model_id":
			query = query.Where("model_id = ?", value)
		case "model_kind":
			query = query.Where("model_kind = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CostEntrySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if err := query.Order(orderBy + " " + orderDir).Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]billing.CostEntry, len(models))
	for i := range models {
		entities[i] = *models[i].ToEntity()
	}
	return entities, nil
}

// Ensure GormCostEntryRepository implements CostEntryRepository
var _ billing.CostEntryRepository = (*GormCostEntryRepository)(nil)
