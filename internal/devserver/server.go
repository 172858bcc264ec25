package devserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ordersync/ordersync/config"
	"github.com/ordersync/ordersync/pkg/cache"
	"github.com/ordersync/ordersync/pkg/database"
	grpcsrv "github.com/ordersync/ordersync/pkg/grpc"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/metrics"
	"github.com/ordersync/ordersync/pkg/middleware"
	"github.com/ordersync/ordersync/pkg/reqid"
	"github.com/ordersync/ordersync/pkg/router"
	"github.com/ordersync/ordersync/pkg/storage"
	"github.com/ordersync/ordersync/pkg/ws"
)

// Server is the assembled reference backend.
type Server struct {
	orders *OrderRepository
	users  *UserRepository
	hub    *ws.Hub

	httpSrv *http.Server
	grpcSrv *grpcsrv.Server
}

// New connects the database, cache and storage, migrates the schema and
// wires the routes.
func New() (*Server, error) {
	if err := database.Connect(); err != nil {
		return nil, err
	}
	db := database.DB()
	if err := db.AutoMigrate(&OrderRecord{}, &User{}); err != nil {
		return nil, fmt.Errorf("devserver: migrate: %w", err)
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, list caching disabled", "error", err)
	}
	storage.Connect()

	s := &Server{
		orders: NewOrderRepository(db),
		users:  NewUserRepository(db),
		hub:    ws.NewHub(),
	}

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.httpSrv = &http.Server{
		Addr:         ":" + config.AppPort(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if port := config.GRPCPort(); port != "" {
		s.grpcSrv = grpcsrv.NewServer(port)
	}
	return s, nil
}

// Hub exposes the websocket hub so other processes in the same binary can
// broadcast.
func (s *Server) Hub() *ws.Hub { return s.hub }

// Orders exposes the order repository for seeding.
func (s *Server) Orders() *OrderRepository { return s.orders }

// Users exposes the user repository for seeding.
func (s *Server) Users() *UserRepository { return s.users }

func (s *Server) routes() (http.Handler, error) {
	r := router.New()
	r.Use(
		middleware.Recover,
		reqid.Middleware,
		middleware.CORS,
		middleware.Logger,
		metrics.Middleware(),
		middleware.RateLimit(50, 100),
	)

	// Order creation is the public customer form; everything else on
	// /orders is the authenticated admin surface.
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.Auth(h).ServeHTTP
	}

	r.Group("/api", func(api *router.Router) {
		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/register", s.handleRegister)

		api.Post("/orders", s.handleCreateOrder)
		api.Get("/orders", protect(s.handleListOrders))
		api.Get("/orders/{id}", protect(s.handleGetOrder))
		api.Put("/orders/{id}/quantity", protect(s.handleUpdateQuantity))
		api.Delete("/orders/{id}", protect(s.handleDeleteOrder))
	})

	gql, err := s.graphqlHandler()
	if err != nil {
		return nil, err
	}
	r.Handle("/graphql", middleware.Auth(gql))

	r.Handle("/ws", s.hub)
	r.Get("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if config.StorageDefault() == "local" {
		fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot())))
		r.Handle("/storage/*", fs)
	}

	return r, nil
}

// Handler returns the HTTP handler; tests mount it on httptest.Server.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Run serves HTTP (and gRPC when configured) until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.grpcSrv != nil {
		go func() {
			if err := s.grpcSrv.Serve(); err != nil {
				logger.Error("grpc server", "error", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.httpSrv.Addr)
		errc <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.grpcSrv != nil {
		s.grpcSrv.Stop()
	}
	return s.httpSrv.Shutdown(shutdownCtx)
}
