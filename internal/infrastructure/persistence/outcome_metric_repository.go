package persistence

import (
	"context"
	"errors"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutcomeMetricRepository implements billing.OutcomeMetricRepository using GORM
type GormOutcomeMetricRepository struct {
	db *gorm.DB
}

// NewGormOutcomeMetricRepository creates a new GormOutcomeMetricRepository
func NewGormOutcomeMetricRepository(db *gorm.DB) *GormOutcomeMetricRepository {
	return &GormOutcomeMetricRepository{db: db}
}

// FindByID finds an outcome metric by its ID
func (r *GormOutcomeMetricRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeMetric, error) {
	var model OutcomeMetricModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForOrg finds an outcome metric by ID within an organization
func (r *GormOutcomeMetricRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeMetric, error) {
	var model OutcomeMetricModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindAll finds all outcome metrics matching the filter
func (r *GormOutcomeMetricRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	var models []OutcomeMetricModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&OutcomeMetricModel{}), filter)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toOutcomeMetricEntities(models), nil
}

// FindAllForOrg finds all outcome metrics for an organization
func (r *GormOutcomeMetricRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	var models []OutcomeMetricModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&OutcomeMetricModel{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toOutcomeMetricEntities(models), nil
}

// FindByIDsForOrg finds the organization's outcome metrics among the given ids.
// Ids not found are simply absent from the result.
func (r *GormOutcomeMetricRepository) FindByIDsForOrg(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]billing.OutcomeMetric, error) {
	if len(ids) == 0 {
		return []billing.OutcomeMetric{}, nil
	}

	var models []OutcomeMetricModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toOutcomeMetricEntities(models), nil
}

// FindByBillingStatusForOrg finds outcome metrics by billing status for an organization
func (r *GormOutcomeMetricRepository) FindByBillingStatusForOrg(ctx context.Context, orgID uuid.UUID, status billing.BillingStatus, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	var models []OutcomeMetricModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&OutcomeMetricModel{}).
			Where("org_id = ? AND billing_status = ?", orgID, string(status)),
		filter,
	)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toOutcomeMetricEntities(models), nil
}

// Save creates or updates an outcome metric
func (r *GormOutcomeMetricRepository) Save(ctx context.Context, entity *billing.OutcomeMetric) error {
	var model OutcomeMetricModel
	model.FromEntity(entity)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveAll persists all metrics in one transaction
func (r *GormOutcomeMetricRepository) SaveAll(ctx context.Context, metrics []*billing.OutcomeMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, metric := range metrics {
			var model OutcomeMetricModel
			model.FromEntity(metric)
			if err := tx.Save(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes an outcome metric
func (r *GormOutcomeMetricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&OutcomeMetricModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts outcome metrics matching the filter
func (r *GormOutcomeMetricRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&OutcomeMetricModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormOutcomeMetricRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OutcomeMetricSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOutcomeMetricRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("outcome_type ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "outcome_type":
			query = query.Where("outcome_type = ?", value)
		case "verification_status":
			query = query.Where("verification_status = ?", value)
		case "billing_status":
			query = query.Where("billing_status = ?", value)
		case "billing_period":
			query = query.Where("billing_period = ?", value)
		case "model_id":
			query = query.Where("model_id = ?", value)
		}
	}

	return query
}

func toOutcomeMetricEntities(models []OutcomeMetricModel) []billing.OutcomeMetric {
	entities := make([]billing.OutcomeMetric, len(models))
	for i := range models {
		entities[i] = *models[i].ToEntity()
	}
	return entities
}

// Ensure GormOutcomeMetricRepository implements OutcomeMetricRepository
var _ billing.OutcomeMetricRepository = (*GormOutcomeMetricRepository)(nil)
