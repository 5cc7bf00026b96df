package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/batch-scheduler-api/api/swagger"
	"github.com/noah-isme/batch-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/batch-scheduler-api/internal/middleware"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/repository"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	"github.com/noah-isme/batch-scheduler-api/pkg/cache"
	"github.com/noah-isme/batch-scheduler-api/pkg/config"
	"github.com/noah-isme/batch-scheduler-api/pkg/database"
	"github.com/noah-isme/batch-scheduler-api/pkg/export"
	"github.com/noah-isme/batch-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/batch-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/batch-scheduler-api/pkg/middleware/requestid"
)

// @title Batch Scheduler API
// @version 1.0.0
// @description Schedules batch classes into rooms and teacher time slots without double booking.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog, err := buildCatalog(cfg.Scheduling)
	if err != nil {
		logr.Fatal("invalid time slot catalog", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis, logr)
	if err != nil {
		logr.Warn("redis unavailable, teacher directory cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Directory.CacheTTL, logr, cfg.Directory.CacheEnabled && redisClient != nil)

	roomRepo := repository.NewRoomRepository(db)
	teacherSlotRepo := repository.NewTeacherSlotRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	batchClassRepo := repository.NewBatchClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)

	batchClassSvc := service.NewBatchClassService(
		batchRepo,
		subjectRepo,
		teacherRepo,
		roomRepo,
		teacherSlotRepo,
		batchClassRepo,
		catalog,
		db,
		metrics,
		validate,
		logr.Named("scheduler"),
		service.BatchClassServiceConfig{WriteTimeout: cfg.Scheduling.WriteTimeout},
	)
	availabilitySvc := service.NewTeacherAvailabilityService(teacherRepo, teacherSlotRepo, batchRepo, cacheSvc, catalog, validate, logr.Named("availability"), cfg.Directory.CacheTTL)
	exportSvc := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())
	roomPlanSvc := service.NewRoomPlanService(batchClassRepo, batchRepo, exportSvc, catalog, logr.Named("room_plan"))
	roomSvc := service.NewRoomAvailabilityService(roomRepo, catalog)
	batchSvc := service.NewBatchService(batchRepo, roomRepo, batchClassRepo, catalog)
	calendarSvc, err := service.NewTeacherCalendarService(batchClassRepo, teacherRepo, catalog, service.TeacherCalendarConfig{
		Timezone: cfg.Scheduling.Timezone,
		Anchor:   cfg.Scheduling.CalendarAnchor,
	})
	if err != nil {
		logr.Fatal("invalid calendar settings", zap.Error(err))
	}
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Audience: cfg.JWT.Audience})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		BatchClasses: handler.NewBatchClassHandler(batchClassSvc),
		Availability: handler.NewAvailabilityHandler(availabilitySvc),
		RoomPlan:     handler.NewRoomPlanHandler(roomPlanSvc),
		Rooms:        handler.NewRoomHandler(roomSvc, batchSvc),
		Teachers:     handler.NewTeacherHandler(calendarSvc),
		TimeSlots:    handler.NewTimeSlotHandler(catalog),
	}, internalmiddleware.JWT(tokenSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "slots", len(catalog.Slots()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func buildCatalog(cfg config.SchedulingConfig) (*models.TimeSlotCatalog, error) {
	days := make([]models.DayOfWeek, 0, len(cfg.OperatingDays))
	for _, raw := range cfg.OperatingDays {
		day, err := models.ParseDay(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return models.NewTimeSlotCatalog(models.CatalogOptions{
		DayStart:      cfg.DayStart,
		SlotMinutes:   cfg.SlotMinutes,
		SlotCount:     cfg.SlotCount,
		OperatingDays: days,
	})
}
