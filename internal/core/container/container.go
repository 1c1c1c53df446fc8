package container

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	auditLogRepo "garment/internal/auditlog"
	"garment/internal/config"
	"garment/internal/cutting"
	"garment/internal/ledger"
	"garment/internal/locking"
	"garment/internal/middleware"
	"garment/internal/rate_limiter"
	"garment/internal/repository"
	"garment/internal/stocks"
	"garment/internal/users"
	"garment/internal/vendors"
	"garment/pkg/auditlog"
	"garment/pkg/security"
)

const version = "1.0.0"

type Container struct {
	Repository     *repository.Repository
	AuditLog       *auditlog.Auditlog
	Ledger         *ledger.Ledger
	Redis          *redis.Client
	LoginHandler   *security.LoginHandler
	UserHandler    *users.UsersHandler
	StockHandler   *stocks.StockHandler
	VendorHandler  *vendors.VendorHandler
	CuttingHandler *cutting.CuttingHandler
	HistoryHandler *auditLogRepo.Handler
	HealthCheck    *middleware.HealthCheck
}

func NewAppContainer(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Container {
	repo := repository.NewRepository(db)
	auditLogRepository := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditLogRepository, logger)

	var rdb *redis.Client
	var locker ledger.Locker
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = locking.NewRedisLocker(rdb, logger, cfg.Lock.TTL, cfg.Lock.Wait)
		logger.Info("using redis stock locks", zap.String("address", cfg.Redis.Address))
	} else {
		locker = locking.NewKeyedMutex()
		logger.Info("using in-process stock locks")
	}
	stockLedger := ledger.New(logger, locker)

	userRepo := users.NewRepository(repo)
	userHandler := users.NewHandler(userRepo)
	loginHandler := security.NewLoginHandler(userRepo, rate_limiter.NewRateLimiter(10, 5*time.Minute), logger)

	stockRepo := stocks.NewRepository(repo)
	stockHandler := stocks.NewStockHandler(stockRepo)

	vendorService := vendors.NewService(repo, stockLedger, logger)
	vendorHandler := vendors.NewHandler(vendorService, auditLog)

	cuttingService := cutting.NewService(repo, stockLedger, logger)
	cuttingHandler := cutting.NewHandler(cuttingService, auditLog)

	return &Container{
		Repository:     repo,
		AuditLog:       auditLog,
		Ledger:         stockLedger,
		Redis:          rdb,
		LoginHandler:   loginHandler,
		UserHandler:    userHandler,
		StockHandler:   stockHandler,
		VendorHandler:  vendorHandler,
		CuttingHandler: cuttingHandler,
		HistoryHandler: auditLogRepo.NewHandler(auditLogRepository),
		HealthCheck:    middleware.NewHealthCheck(db, version),
	}
}

// Close releases clients owned by the container. The database is closed by
// whoever opened it.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
