package api

import (
	"net/http"
	"time"

	"papertrading/src/api/controllers"
	handlers "papertrading/src/api/handlers"
	"papertrading/src/config"
	"papertrading/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router    *chi.Mux
	Handler   handlers.Handler
	TokenAuth *jwtauth.JWTAuth
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewServer(cfg *config.Config, controller controllers.PaperTradingControllerI, logger *logrus.Logger) *Server {
	server := &Server{
		Router:    chi.NewRouter(),
		Handler:   *handlers.NewHandler(controller),
		TokenAuth: jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil),
		cfg:       cfg,
		logger:    logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(utils.RequestLogger(s.logger))
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Service.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/paper-trading", func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.TokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/account", s.Handler.GetAccount)
		r.Post("/account", s.Handler.CreateAccount)
		r.Get("/holdings", s.Handler.GetHoldings)

		r.Post("/stocks/buy", s.Handler.BuyStock())
		r.Post("/stocks/sell", s.Handler.SellStock())
		r.Post("/crypto/buy", s.Handler.BuyCrypto())
		r.Post("/crypto/sell", s.Handler.SellCrypto())

		r.Get("/transactions", s.Handler.GetTransactions)
		r.Get("/transactions/export", s.Handler.ExportTransactions)
		r.Get("/statement", s.Handler.GetStatement)
		r.Get("/performance", s.Handler.GetPerformance)
		r.Get("/portfolio", s.Handler.GetPortfolio)
		r.Post("/portfolio/refresh", s.Handler.RefreshPortfolio)
		r.Get("/portfolio/allocation", s.Handler.GetAllocationChart)
	})
}

func NewHTTPServer(server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + server.cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
