// Package httpserver manages server creation and api routing.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-bank/ledger/internal/auditlog"
	"github.com/go-bank/ledger/internal/bankdelivery"
	"github.com/go-bank/ledger/internal/bankservice"
	"github.com/go-bank/ledger/internal/middleware"
	"github.com/go-bank/ledger/pkg/configpkg"
	"github.com/go-bank/ledger/pkg/metricspkg"
)

// Server holds the router, the ledger service and configuration.
type Server struct {
	Engine  *gin.Engine
	Service *bankservice.Service
	Config  configpkg.Config

	auditFile *auditlog.FileLogger
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases resources held by optional audit sinks.
func (s *Server) Close() error {
	if s.auditFile != nil {
		return s.auditFile.Close()
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
func New(repo bankservice.Repo, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	metrics := metricspkg.NewCollector()

	service := bankservice.New(repo, config.WorkerPoolCapacity, metrics)

	var auditFile *auditlog.FileLogger

	if config.AuditLogPath != "" {
		var err error

		auditFile, err = auditlog.NewFileLogger(config.AuditLogPath)
		if err != nil {
			return nil, err
		}

		service.AddObserver(auditFile)
	}

	if config.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		service.AddObserver(auditlog.NewStreamPublisher(client, config.RedisAuditStream, logger))
	}

	handler := bankdelivery.NewHandler(service)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/accounts", handler.CreateAccount)
	engine.GET("/accounts/:number", handler.GetAccount)
	engine.GET("/accounts/:number/balance", handler.GetBalance)
	engine.DELETE("/accounts/:number", handler.DeleteAccount)
	engine.POST("/accounts/:number/deposit", handler.Deposit)
	engine.POST("/accounts/:number/withdraw", handler.Withdraw)
	engine.POST("/transfers", handler.Transfer)

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	server := &Server{
		Engine:    engine,
		Service:   service,
		Config:    config,
		auditFile: auditFile,
	}

	return server, nil
}
