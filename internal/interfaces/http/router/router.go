// Package router mounts the ledger API on a gin engine.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteRegistrar mounts one resource. Write routes put writes in front of
// their handler so every mutation names its actor and honours
// Idempotency-Key.
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup, writes gin.HandlersChain)
}

// Router owns the versioned API group
type Router struct {
	engine         *gin.Engine
	apiVersion     string
	registrars     []RouteRegistrar
	health         *handler.HealthHandler
	swagger        *middleware.SwaggerConfig
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithIdempotency enables Idempotency-Key checks on write routes
func WithIdempotency(store shared.IdempotencyStore, ttl time.Duration) Option {
	return func(r *Router) {
		r.idempotency = store
		r.idempotencyTTL = ttl
	}
}

// WithHealth mounts the health check at /health and under the API group
func WithHealth(h *handler.HealthHandler) Option {
	return func(r *Router) {
		r.health = h
	}
}

// WithSwagger mounts the API documentation at /swagger/*any behind cfg
func WithSwagger(cfg middleware.SwaggerConfig) Option {
	return func(r *Router) {
		r.swagger = &cfg
	}
}

// New creates a Router on engine
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:         engine,
		apiVersion:     "v1",
		idempotencyTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if r.health != nil {
		r.engine.GET("/health", r.health.Check)
		api.GET("/health", r.health.Check)
	}
	if r.swagger != nil {
		r.engine.GET("/swagger/*any",
			middleware.SwaggerProtection(*r.swagger),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	writes := gin.HandlersChain{
		middleware.RequireActor(),
		middleware.Idempotency(r.idempotency, r.idempotencyTTL),
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api, writes)
	}
}

func with(chain gin.HandlersChain, h gin.HandlerFunc) gin.HandlersChain {
	out := make(gin.HandlersChain, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}
