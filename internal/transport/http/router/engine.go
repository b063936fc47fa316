package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hotel-backoffice/internal/core/config"
	"hotel-backoffice/internal/core/redisx"
	"hotel-backoffice/internal/core/server"
	"hotel-backoffice/internal/service"
	mdw "hotel-backoffice/internal/transport/http/middleware"
	resp "hotel-backoffice/internal/transport/http/response"
)

// Deps is what both engines are built from. Redis and Ping are optional.
type Deps struct {
	Log      *zap.Logger
	Config   *config.Config
	Services *service.Services
	Registry *Registry
	Redis    *redisx.Client
	Ping     func(ctx context.Context) error
}

func (d Deps) registry() *Registry {
	if d.Registry != nil {
		return d.Registry
	}
	return Modules(d.Services)
}

// base installs the middleware chain shared by both engines plus /health and /metrics.
func base(name string, d Deps) *gin.Engine {
	cfg := d.Config
	r := server.NewRouter(d.Log, server.Options{Name: name})

	perIP := mdw.RateLimitPerIP(rate.Limit(cfg.RateLimit.PerIPRPS), cfg.RateLimit.PerIPBurst, 10*time.Minute)
	if d.Redis != nil {
		perIP = mdw.RateLimitRedis(redisx.NewTokenBucket(d.Redis, cfg.RateLimit.PerIPRPS, cfg.RateLimit.PerIPBurst), d.Log)
	}
	// multipart framing on top of the file itself
	bodyCap := cfg.Upload.MaxBytes + 1<<20

	r.Use(
		mdw.RequestID(),
		mdw.Metrics(name),
		mdw.AccessLog(d.Log.Named(name)),
		mdw.RateLimit(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		perIP,
		mdw.ConcurrencyLimit(cfg.RateLimit.MaxInFlight),
		mdw.MaxBodyBytes(bodyCap),
		mdw.Timeout(time.Duration(cfg.App.HTTP.RequestTimeoutSec)*time.Second),
		mdw.Authenticate(d.Services.Users),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				resp.Abort(c, http.StatusServiceUnavailable, resp.CodeServiceUnavailable, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewAPIEngine serves the user-facing surface under /api/v1.
func NewAPIEngine(d Deps) *gin.Engine {
	r := base("api", d)
	api := r.Group("/api/v1")
	d.registry().MountAPI(api)
	return r
}

// NewAdminEngine serves /admin/v1; every route there needs an admin caller.
func NewAdminEngine(d Deps) *gin.Engine {
	r := base("admin", d)
	admin := r.Group("/admin/v1")
	admin.Use(mdw.RequireAdmin(d.Services.Roles))
	d.registry().MountAdmin(admin)
	return r
}
