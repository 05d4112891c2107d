package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"duopet-backend/config"
	"duopet-backend/controllers"
	"duopet-backend/metrics"
	"duopet-backend/middleware"
	"duopet-backend/repositories"
	"duopet-backend/routes"
	"duopet-backend/services"
)

type auditBackend interface {
	services.AuditRecorder
	services.AuditStats
}

// appDeps are the live connections the HTTP application runs on. Redis and
// LoginEvents are optional.
type appDeps struct {
	DB          *sql.DB
	Redis       *redis.Client
	LoginEvents *mongo.Collection
	Registry    *prometheus.Registry
	Log         *logrus.Logger
	Now         func() time.Time
}

// app is the assembled HTTP application.
type app struct {
	router *gin.Engine
	// set only when codes live in process memory
	memoryCodes *services.MemoryCodeStore
}

func newApp(d appDeps) (*app, error) {
	if d.Now == nil {
		d.Now = time.Now
	}
	log := d.Log

	users := repositories.NewUserRepository(d.DB)
	refresh := repositories.NewRefreshRepository(d.DB)

	var audit auditBackend = services.NopAuditRecorder{}
	if d.LoginEvents != nil {
		audit = services.NewMongoAuditRecorder(d.LoginEvents)
	}

	a := &app{}
	var codes services.CodeStore
	if d.Redis != nil {
		codes = services.NewRedisCodeStore(d.Redis, "")
	} else {
		a.memoryCodes = services.NewMemoryCodeStore(d.Now)
		codes = a.memoryCodes
	}

	tokens := services.NewTokenService(config.JWTSecret, config.JWTAccessTTL, config.JWTRefreshTTL, d.Now)
	sessionsSvc := services.NewRefreshService(refresh, log.WithField("component", "refresh"), d.Now)
	authSvc := services.NewAuthService(users, tokens, sessionsSvc, audit, log.WithField("component", "auth"), d.Now)
	reissueSvc := services.NewReissueService(users, tokens, sessionsSvc, log.WithField("component", "reissue"))
	userSvc := services.NewUserService(users, log.WithField("component", "users"), d.Now)
	smsSvc := services.NewSmsService(codes, services.LogSmsSender{Log: log.WithField("component", "sms")}, config.SmsCodeTTL, log)
	socialSvc := services.NewSocialService(oauthProviders(), users, authSvc, config.SocialRedirectURL, log.WithField("component", "social"), d.Now)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, err
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRefreshToken, middleware.HeaderExtendLogin},
		ExposeHeaders:    []string{middleware.HeaderTokenExpired, "Authorization", middleware.HeaderRefreshTokenOut},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// answer any preflight the CORS handler let through
	r.Use(func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// the provider callback is a cross-site navigation, so the state
	// cookie cannot be SameSite=Strict
	store := cookie.NewStore([]byte(config.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 600, HttpOnly: true, Secure: config.Environment == "production", SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("duopet_session", store))

	r.Use(middleware.Metrics())

	var metricsHandler http.Handler
	if d.Registry != nil {
		metricsHandler = metrics.Handler(d.Registry)
	}

	routes.SetupRoutes(r, routes.Handlers{
		Gate:    middleware.RequestGate(tokens, middleware.DefaultAllowList(), log.WithField("component", "gate")),
		Metrics: metricsHandler,
		Auth:    controllers.NewAuthController(authSvc, reissueSvc, services.NewSessionService(tokens), log),
		Users:   controllers.NewUserController(userSvc, log),
		Admin:   controllers.NewAdminController(userSvc, services.NewAdminService(users, audit), log),
		Social:  controllers.NewSocialController(socialSvc, log),
		Sms:     controllers.NewSmsController(smsSvc, log),
	})

	a.router = r
	return a, nil
}

func oauthProviders() map[services.Provider]*services.OAuthProvider {
	providers := make(map[services.Provider]*services.OAuthProvider, len(config.OAuthClients))
	for name, client := range config.OAuthClients {
		p, err := services.ParseProvider(name)
		if err != nil {
			continue
		}
		providers[p] = services.NewOAuthProvider(p, client.ID, client.Secret, config.OAuthCallbackBase)
	}
	return providers
}
