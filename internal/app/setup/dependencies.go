package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-commission-service/internal/config"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-commission-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.CommissionConfig
	Logger       *zap.Logger
	Metrics      *metrics.CommissionMetrics
	DB           *gorm.DB
	Publisher    domain.EventPublisher
	Subscriber   domain.SubscriberPort
	Repositories *Repositories

	kafkaPublisher *kafka.DefaultKafkaPublisher
}

type Repositories struct {
	UserRepo    domain.UserRepository
	DealRepo    domain.DealRepository
	ShaveRepo   domain.ShaveRepository
	LedgerRepo  domain.LedgerRepository
	RequestRepo domain.RequestRepository
	AuditRepo   domain.AuditRepository
	UnitOfWork  domain.UnitOfWork
}

func InitializeDependencies(cfg *config.CommissionConfig, logger *zap.Logger, reg prometheus.Registerer) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCommissionMetrics(reg),
	}

	switch cfg.Storage.Driver {
	case "", "postgres":
		db := postgres.MustInitDB(cfg)
		if err := migrate.RunMigrations(db, cfg.CommissionDB.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		deps.DB = db
		deps.Repositories = &Repositories{
			UserRepo:    repository.NewDefaultUserRepository(db),
			DealRepo:    repository.NewDefaultDealRepository(db),
			ShaveRepo:   repository.NewDefaultShaveRepository(db),
			LedgerRepo:  repository.NewDefaultLedgerRepository(db),
			RequestRepo: repository.NewDefaultRequestRepository(db),
			AuditRepo:   repository.NewDefaultAuditRepository(db),
			UnitOfWork:  repository.NewDefaultUnitOfWork(db),
		}
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		deps.Repositories = MemoryRepositories(memory.NewStore())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.KafkaService.Enabled() {
		brokers := []string{cfg.KafkaService.Addr()}
		deps.kafkaPublisher = kafka.NewDefaultKafkaPublisher(brokers)
		deps.Publisher = kafka.NewCommissionEventPublisher(
			deps.kafkaPublisher,
			cfg.KafkaService.RequestEventsTopic,
			cfg.KafkaService.AttributionTopic,
		)
		deps.Subscriber = kafka.NewDefaultKafkaSubscriber(brokers)
	} else {
		logger.Warn("kafka is not configured, events are not published")
	}

	return deps, nil
}

func MemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		UserRepo:    store,
		DealRepo:    store,
		ShaveRepo:   store,
		LedgerRepo:  store,
		RequestRepo: store,
		AuditRepo:   store,
		UnitOfWork:  store,
	}
}

func (d *Dependencies) Close() {
	if d.kafkaPublisher != nil {
		if err := d.kafkaPublisher.Close(); err != nil {
			d.Logger.Warn("failed to close kafka publisher", zap.Error(err))
		}
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
