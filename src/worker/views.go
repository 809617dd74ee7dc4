package worker

import (
	"net/http"
	"time"

	"papertrading/src/config"
	"papertrading/src/utils"
	"papertrading/src/worker/controllers"
	handlers "papertrading/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
	cfg     *config.Config
	logger  *logrus.Logger
}

func NewServer(cfg *config.Config, controller *controllers.Controller, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handlers.NewHandler(controller),
		cfg:     cfg,
		logger:  logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(utils.RequestLogger(s.logger))
	s.Router.Use(middleware.Recoverer)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/valuations", func(r chi.Router) {
		r.Post("/refresh", s.Handler.RefreshValuations)
	})
}

func NewHTTPServer(server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + server.cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
