// Package integration wires the full billing stack (gin engine, services,
// gorm repositories over in-memory SQLite) and exercises it over HTTP.
package integration

import (
	"testing"

	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/infrastructure/cache"
	"github.com/agentbill/backend/internal/infrastructure/persistence"
	"github.com/agentbill/backend/internal/infrastructure/strategy/pricing"
	"github.com/agentbill/backend/internal/interfaces/http/handler"
	"github.com/agentbill/backend/internal/interfaces/http/middleware"
	"github.com/agentbill/backend/internal/interfaces/http/router"
	"github.com/agentbill/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestEnv holds the wired stack for one test
type TestEnv struct {
	Engine     *gin.Engine
	DB         *gorm.DB
	ModelRepo  *persistence.GormBillingModelRepository
	MetricRepo *persistence.GormOutcomeMetricRepository
	RuleRepo   *persistence.GormVerificationRuleRepository
	CostRepo   *persistence.GormCostEntryRepository
	Cache      *cache.InMemorySnapshotCache
}

// NewTestEnv builds the complete HTTP stack backed by an isolated
// in-memory database and an in-memory snapshot cache
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := zap.NewNop()

	modelRepo := persistence.NewGormBillingModelRepository(db)
	metricRepo := persistence.NewGormOutcomeMetricRepository(db)
	ruleRepo := persistence.NewGormVerificationRuleRepository(db)
	costRepo := persistence.NewGormCostEntryRepository(db)

	upstream := cache.NewRepositorySnapshotProvider(modelRepo)
	snapshots := cache.NewInMemorySnapshotCache(upstream)
	t.Cleanup(snapshots.Stop)

	calculator := pricing.NewCalculator()
	modelService := appbilling.NewModelService(modelRepo, snapshots, log)
	calcService := appbilling.NewCalculationService(snapshots, calculator, costRepo, log)
	outcomeService := appbilling.NewOutcomeService(snapshots, metricRepo, ruleRepo, log)

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())

	orgConfig := middleware.DefaultOrgConfig()
	orgConfig.Logger = log
	engine.Use(middleware.OrgMiddlewareWithConfig(orgConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewBillingModelHandler(modelService)).
		Register(handler.NewCalculationHandler(calcService)).
		Register(handler.NewOutcomeHandler(outcomeService)).
		Register(handler.NewSystemHandler())
	r.Setup()

	return &TestEnv{
		Engine:     engine,
		DB:         db,
		ModelRepo:  modelRepo,
		MetricRepo: metricRepo,
		RuleRepo:   ruleRepo,
		CostRepo:   costRepo,
		Cache:      snapshots,
	}
}
