package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/duetday/duetday-api/api/swagger"
	"github.com/duetday/duetday-api/internal/handler"
	"github.com/duetday/duetday-api/internal/middleware"
	"github.com/duetday/duetday-api/internal/repository"
	"github.com/duetday/duetday-api/internal/service"
	"github.com/duetday/duetday-api/pkg/cache"
	"github.com/duetday/duetday-api/pkg/config"
	"github.com/duetday/duetday-api/pkg/database"
	"github.com/duetday/duetday-api/pkg/logger"
	corsmiddleware "github.com/duetday/duetday-api/pkg/middleware/cors"
	reqidmiddleware "github.com/duetday/duetday-api/pkg/middleware/requestid"
)

// @title DuetDay API
// @version 1.0.0
// @description Couple calendar and shared schedule service
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Calendar.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, calendar cache disabled", "error", err)
			redisClient = nil
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()

	memberRepo := repository.NewMemberRepository(db)
	coupleRepo := repository.NewCoupleRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	datingRepo := repository.NewDatingRepository(db)
	anniversaryRepo := repository.NewAnniversaryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(memberRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "duetday-api",
	})
	scheduleSvc := service.NewScheduleService(scheduleRepo, cacheRepo, validate, logr)
	datingSvc := service.NewDatingService(datingRepo, cacheRepo, validate, logr)
	anniversarySvc := service.NewAnniversaryService(anniversaryRepo, cacheRepo, validate, logr)
	coupleSvc := service.NewCoupleService(coupleRepo, memberRepo, anniversaryRepo, cacheRepo, validate, logr)
	calendarSvc := service.NewCalendarService(scheduleRepo, datingRepo, anniversaryRepo, memberRepo, cacheRepo, cfg.Calendar.CacheTTL, metricsSvc, logr)
	exportSvc := service.NewExportService(calendarSvc, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	datingHandler := handler.NewDatingHandler(datingSvc)
	anniversaryHandler := handler.NewAnniversaryHandler(anniversarySvc)
	coupleHandler := handler.NewCoupleHandler(coupleSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.POST("/couples", coupleHandler.Connect)
			protected.GET("/couples/:coupleId", coupleHandler.Get)

			protected.POST("/members/:memberId/schedules", scheduleHandler.Create)
			protected.GET("/members/:memberId/schedules", scheduleHandler.List)
			protected.PUT("/members/:memberId/schedules/:scheduleId", scheduleHandler.Update)
			protected.DELETE("/members/:memberId/schedules/:scheduleId", scheduleHandler.Delete)

			protected.POST("/couples/:coupleId/datings", datingHandler.Create)
			protected.GET("/couples/:coupleId/datings", datingHandler.List)
			protected.PUT("/couples/:coupleId/datings/:datingId", datingHandler.Update)
			protected.DELETE("/couples/:coupleId/datings/:datingId", datingHandler.Delete)

			protected.POST("/couples/:coupleId/anniversary", anniversaryHandler.Create)
			protected.GET("/couples/:coupleId/anniversary", anniversaryHandler.List)
			protected.GET("/couples/:coupleId/anniversary/dates", anniversaryHandler.Dates)
			protected.PUT("/couples/:coupleId/anniversary/:anniversaryId", anniversaryHandler.Update)
			protected.DELETE("/couples/:coupleId/anniversary/:anniversaryId", anniversaryHandler.Delete)

			protected.GET("/members/:memberId/calendar/date", calendarHandler.DateView)
			if cfg.Export.Enabled {
				protected.GET("/members/:memberId/calendar/export", calendarHandler.Export)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
