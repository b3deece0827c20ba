package persistence

import (
	"context"
	"errors"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillingModelRepository implements billing.BillingModelRepository using GORM
type GormBillingModelRepository struct {
	db *gorm.DB
}

// NewGormBillingModelRepository creates a new GormBillingModelRepository
func NewGormBillingModelRepository(db *gorm.DB) *GormBillingModelRepository {
	return &GormBillingModelRepository{db: db}
}

// FindByID finds a billing model by its ID
func (r *GormBillingModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingModel, error) {
	var model BillingModelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForOrg finds a billing model by ID within an organization
func (r *GormBillingModelRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.BillingModel, error) {
	var model BillingModelModel
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

// FindAll finds all billing models matching the filter
func (r *GormBillingModelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.BillingModel, error) {
	var models []BillingModelModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&BillingModelModel{}), filter)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toBillingModelEntities(models), nil
}

// FindAllForOrg finds all billing models for an organization
func (r *GormBillingModelRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.BillingModel, error) {
	var models []BillingModelModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&BillingModelModel{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toBillingModelEntities(models), nil
}

// FindActiveForOrg finds all active billing models for an organization
func (r *GormBillingModelRepository) FindActiveForOrg(ctx context.Context, orgID uuid.UUID) ([]billing.BillingModel, error) {
	var models []BillingModelModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toBillingModelEntities(models), nil
}

// Save creates or updates a billing model
func (r *GormBillingModelRepository) Save(ctx context.Context, entity *billing.BillingModel) error {
	var model BillingModelModel
	model.FromEntity(entity)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a billing model
func (r *GormBillingModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&BillingModelModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts billing models matching the filter
func (r *GormBillingModelRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&BillingModelModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormBillingModelRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BillingModelSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillingModelRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

func toBillingModelEntities(models []BillingModelModel) []billing.BillingModel {
	entities := make([]billing.BillingModel, len(models))
	for i := range models {
		entities[i] = *models[i].ToEntity()
	}
	return entities
}

// Ensure GormBillingModelRepository implements BillingModelRepository
var _ billing.BillingModelRepository = (*GormBillingModelRepository)(nil)
