package httpapi

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/dew-13/solestyle/internal/auth"
	"github.com/dew-13/solestyle/internal/orders"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Composer *orders.Composer
	Service  *orders.Service
	Resolver *auth.Resolver
	Store    Pinger
	Logger   *slog.Logger
}

type Server struct {
	engine   *gin.Engine
	composer *orders.Composer
	service  *orders.Service
	resolver *auth.Resolver
	store    Pinger
	logger   *slog.Logger
}

func NewServer(d Deps) *Server {
	useJSONFieldNames()

	r := gin.New()
	r.Use(RequestID(), Logger(d.Logger), ErrorHandler(d.Logger), Recovery(d.Logger))

	s := &Server{
		engine:   r,
		composer: d.Composer,
		service:  d.Service,
		resolver: d.Resolver,
		store:    d.Store,
		logger:   d.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	{
		catalog := api.Group("/catalog")
		catalog.GET("/:type", s.listCatalog)
		catalog.GET("/:type/:id", s.getCatalogItem)

		api.POST("/orders", s.checkout)

		account := api.Group("/orders", RequireAuth(s.resolver))
		account.GET("/mine", s.myOrders)
		account.POST("/:id/shipping/merge", s.mergeShipping)

		admin := api.Group("/admin", RequireAdmin(s.resolver))
		admin.GET("/orders", s.adminListOrders)
		admin.GET("/orders/:id", s.adminGetOrder)
		admin.PATCH("/orders/:id", s.adminUpdateStatus)
		admin.GET("/stats", s.adminStats)
		admin.POST("/catalog/:type", s.adminCreateCatalogItem)
		admin.PUT("/catalog/:type/:id", s.adminUpdateCatalogItem)
		admin.DELETE("/catalog/:type/:id", s.adminDeleteCatalogItem)
	}
}
