package persistence

import (
	"context"
	"errors"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVerificationRuleRepository implements billing.VerificationRuleRepository using GORM
type GormVerificationRuleRepository struct {
	db *gorm.DB
}

// NewGormVerificationRuleRepository creates a new GormVerificationRuleRepository
func NewGormVerificationRuleRepository(db *gorm.DB) *GormVerificationRuleRepository {
	return &GormVerificationRuleRepository{db: db}
}

// FindByID finds a verification rule by its ID
func (r *GormVerificationRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	var model VerificationRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByIDForOrg finds a verification rule by ID within an organization
func (r *GormVerificationRuleRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	var model VerificationRuleModel
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

// FindAll finds all verification rules matching the filter
func (r *GormVerificationRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	var models []VerificationRuleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&VerificationRuleModel{}), filter)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toVerificationRuleEntities(models), nil
}

// FindAllForOrg finds all verification rules for an organization
func (r *GormVerificationRuleRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	var models []VerificationRuleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&VerificationRuleModel{}).Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toVerificationRuleEntities(models), nil
}

// FindForOutcomeType finds the organization's active rules for an outcome type
func (r *GormVerificationRuleRepository) FindForOutcomeType(ctx context.Context, orgID uuid.UUID, outcomeType string) ([]billing.OutcomeVerificationRule, error) {
	var models []VerificationRuleModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND outcome_type = ? AND is_active = ?", orgID, outcomeType, true).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toVerificationRuleEntities(models), nil
}

// Save creates or updates a verification rule
func (r *GormVerificationRuleRepository) Save(ctx context.Context, entity *billing.OutcomeVerificationRule) error {
	var model VerificationRuleModel
	model.FromEntity(entity)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a verification rule
func (r *GormVerificationRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&VerificationRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts verification rules matching the filter
func (r *GormVerificationRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&VerificationRuleModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormVerificationRuleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, VerificationRuleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormVerificationRuleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("outcome_type ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "outcome_type":
			query = query.Where("outcome_type = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

func toVerificationRuleEntities(models []VerificationRuleModel) []billing.OutcomeVerificationRule {
	entities := make([]billing.OutcomeVerificationRule, len(models))
	for i := range models {
		entities[i] = *models[i].ToEntity()
	}
	return entities
}

// Ensure GormVerificationRuleRepository implements VerificationRuleRepository
var _ billing.VerificationRuleRepository = (*GormVerificationRuleRepository)(nil)
