package cache

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// RepositorySnapshotProvider resolves model snapshots straight from the
// billing model repository. It is the source of truth behind every cache
// layer and is usable on its own when caching is disabled.
type RepositorySnapshotProvider struct {
	models billing.BillingModelRepository
}

// NewRepositorySnapshotProvider creates a repository-backed snapshot provider
func NewRepositorySnapshotProvider(models billing.BillingModelRepository) *RepositorySnapshotProvider {
	return &RepositorySnapshotProvider{models: models}
}

// Snapshot loads the model and returns an immutable copy of its configuration
func (p *RepositorySnapshotProvider) Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error) {
	model, err := p.models.FindByIDForOrg(ctx, orgID, modelID)
	if err != nil {
		return billing.ModelSnapshot{}, err
	}
	return model.Snapshot(), nil
}
