package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mentorhub/go-services/handlers"
	"github.com/mentorhub/go-services/internal/config"
	"github.com/mentorhub/go-services/internal/database"
	"github.com/mentorhub/go-services/internal/oidc"
	"github.com/mentorhub/go-services/internal/resource"
	resourcehandler "github.com/mentorhub/go-services/internal/resource/handler"
	"github.com/mentorhub/go-services/internal/tokens"
	"github.com/mentorhub/go-services/pkg/logger"
	"github.com/mentorhub/go-services/pkg/metrics"
	"github.com/mentorhub/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Correlation-Id")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Token verifier: Keycloak OIDC when configured, otherwise the
	// local HS256 verifier paired with /dev-login. The insecure
	// verifier is an explicit opt-in for integration runs.
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && cfg.JWT.Secret != "" {
		verifier = tokens.NewVerifier(cfg.JWT.Secret)
		logger.Infof("using local HS256 token verifier")
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}
	if verifier == nil {
		logger.Fatalf("no token verifier available: configure KEYCLOAK_URL or JWT_SECRET")
	}

	// Connect to MongoDB; without it the API falls back to in-process
	// stores (dev/test convenience, nothing survives a restart).
	var mongoDB *databaseHandle
	if cfg.MongoDB.URI != "" {
		client, errConn := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB: %v", errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			mongoDB = &databaseHandle{client: client, name: cfg.MongoDB.Database}
		}
	}
	if mongoDB == nil {
		logger.Warnf("MongoDB unavailable; using in-memory document stores")
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["storage"] = mongoDB != nil
		if cfg.MongoDB.URI != "" && mongoDB == nil {
			ready = false
		}
		deps["verifier"] = verifier != nil
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	// Resource services: one generic engine instantiated per resource
	// definition, all behind the same auth middleware.
	defs := resource.DefaultDefinitions()
	api := r.Group("/api", middleware.AuthMiddleware(verifier))
	for _, def := range defs {
		var store resource.Store
		if mongoDB != nil {
			ms := resource.NewMongoStore(mongoDB.client.Database(mongoDB.name).Collection(def.Collection))
			if err := ms.EnsureIndexes(ctx, def.AllowedSortFields); err != nil {
				logger.Warnf("failed to ensure indexes for %s: %v", def.Collection, err)
			}
			store = ms
		} else {
			store = resource.NewMemoryStore()
		}
		svc := resource.NewService(def, store, resource.AllowAll{})
		resourcehandler.Register(api, svc)
		logger.Infof("registered resource %s (collection=%s create=%v update=%v)", def.Name, def.Collection, def.SupportsCreate, def.SupportsUpdate)
	}

	handlers.RegisterSwagger(r, defs)
	if cfg.Server.Environment != "production" && cfg.JWT.Secret != "" {
		handlers.RegisterDevLogin(r, cfg)
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting resource API on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

type databaseHandle struct {
	client *mongo.Client
	name   string
}
