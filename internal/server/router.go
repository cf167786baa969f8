package server

import (
	"net/http"
	"time"

	"maintenance/internal/middleware"
	"maintenance/internal/modules/equipment"
	"maintenance/internal/modules/inventory"
	"maintenance/internal/modules/realtime"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/modules/workorder"
	"maintenance/internal/pkg/logger"
	"maintenance/internal/pkg/response"
	"maintenance/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Options struct {
	LockTTL        time.Duration
	AllowedOrigins []string
	// Redis, when set, backs the inventory lock and the change feed fan-out.
	Redis *redis.Client
	Log   *logrus.Logger
}

// Server holds the wired HTTP engine and the pieces cmd/api runs alongside it.
type Server struct {
	Engine   *gin.Engine
	Hub      *realtime.Hub
	Schedule *schedule.Service
	Origin   string
}

func New(db *gorm.DB, opts Options) *Server {
	log := logger.OrDiscard(opts.Log)
	origin := uuid.NewString()

	equipmentRepo := repository.NewEquipmentRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)

	hub := realtime.NewHub(origin, log)
	notifier := realtime.MultiNotifier{hub}

	var locker inventory.Locker
	if opts.Redis != nil {
		locker = inventory.NewRedisLocker(opts.Redis)
		notifier = append(notifier, realtime.NewRedisPublisher(opts.Redis, realtime.DefaultChannel, origin, log))
	}

	equipmentService := equipment.NewService(equipmentRepo)
	inventoryService := inventory.NewService(ledgerRepo, inventoryRepo, locker, opts.LockTTL, log)
	scheduleService := schedule.NewService(taskRepo, equipmentRepo, log)
	workOrderService := workorder.NewService(workOrderRepo, inventoryRepo, scheduleService, equipmentRepo, log)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	realtime.NewHandler(hub, opts.AllowedOrigins).RegisterRoutes(r.Group(""))

	v1 := r.Group("/api/v1")
	{
		equipment.NewHandler(equipmentService).RegisterRoutes(v1)
		inventory.NewHandler(inventoryService, notifier).RegisterRoutes(v1)
		schedule.NewHandler(scheduleService).RegisterRoutes(v1)
		workorder.NewHandler(workOrderService).RegisterRoutes(v1)
	}

	return &Server{Engine: r, Hub: hub, Schedule: scheduleService, Origin: origin}
}
