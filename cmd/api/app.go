package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"myhometech/internal/config"
	"myhometech/internal/domain/address"
	"myhometech/internal/domain/admin"
	"myhometech/internal/domain/appliance"
	"myhometech/internal/domain/auth"
	"myhometech/internal/domain/notification"
	"myhometech/internal/domain/profile"
	"myhometech/internal/domain/rating"
	"myhometech/internal/domain/servicerequest"
	"myhometech/internal/middleware"
	jwtsvc "myhometech/internal/pkg/jwt"
	"myhometech/internal/pkg/response"
	"myhometech/internal/realtime"
)

type app struct {
	router   *gin.Engine
	notifier *notification.Notifier
	sweeper  *servicerequest.Sweeper
	jwt      *jwtsvc.Service
}

// newApp wires repositories, services and HTTP routes. The sweeper is
// configured but not started.
func newApp(cfg *config.Config, db *gorm.DB, hub *realtime.Hub, publisher notification.Publisher, zl *zap.Logger) (*app, error) {
	rules, err := servicerequest.RulesFromConfig(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// repositories
	userRepo := auth.NewUserRepository(db)
	clientRepo := profile.NewClientRepository(db)
	technicianRepo := profile.NewTechnicianRepository(db)
	applianceRepo := appliance.NewRepository(db)
	addressRepo := address.NewRepository(db)
	requestRepo := servicerequest.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	ratingRepo := rating.NewRepository(db)

	notifier := notification.NewNotifier(notificationRepo, publisher, zl)
	if cfg.SMTP.Host != "" {
		mailer := notification.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		notifier.WithEmail(userRepo, mailer)
	}

	// services
	authService := auth.NewService(userRepo, j)
	profileService := profile.NewService(clientRepo, technicianRepo)
	applianceService := appliance.NewService(applianceRepo)
	addressService := address.NewService(addressRepo)
	requestService := servicerequest.NewService(requestRepo, applianceRepo, addressRepo, notifier, rules, zl)
	notificationService := notification.NewService(notificationRepo)
	ratingService := rating.NewService(ratingRepo, requestRepo, notifier)
	adminService := admin.NewService(admin.NewRepository(db), userRepo, requestService, zl)
	cleanup := notification.NewCleanupService(notificationRepo, cfg.Notify.Retention, zl)

	sweeper := servicerequest.NewSweeper(zl)
	if err := sweeper.AddExpiry(cfg.Schedule.ExpirySweepSpec, requestService); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep: %w", err)
	}
	if cfg.Notify.CleanupSpec != "" {
		err := sweeper.AddJob(cfg.Notify.CleanupSpec, "purge_read_notifications", func(ctx context.Context) error {
			_, err := cleanup.PurgeRead(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("schedule notification cleanup: %w", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(zl))
	r.Use(middleware.ErrorLogger(zl))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins...))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "online": hub.OnlineCount()})
	})

	realtime.NewGateway(hub, j, cfg.Server.AllowedOrigins, zl).RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j))

	authHandler := auth.NewHandler(authService)
	authHandler.RegisterPublicRoutes(v1)
	authHandler.RegisterProtectedRoutes(protected)

	profile.RegisterRoutes(v1, protected, profile.NewClientHandler(profileService), profile.NewTechnicianHandler(profileService))
	appliance.NewHandler(applianceService).RegisterRoutes(v1, protected)
	address.NewHandler(addressService).RegisterRoutes(protected)
	servicerequest.RegisterRoutes(protected, servicerequest.NewHandler(requestService))
	notification.RegisterRoutes(protected, notification.NewHandler(notificationService))
	rating.NewHandler(ratingService).RegisterRoutes(v1, protected)
	admin.NewHandler(adminService).RegisterRoutes(protected)

	return &app{
		router:   r,
		notifier: notifier,
		sweeper:  sweeper,
		jwt:      j,
	}, nil
}
