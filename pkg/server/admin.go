package server

import (
	"fmt"

	"github.com/SentriLabs/SentriAuth/pkg/config"
	handlers "github.com/SentriLabs/SentriAuth/pkg/handlers/http"
	"github.com/SentriLabs/SentriAuth/pkg/middleware"
	"github.com/SentriLabs/SentriAuth/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	AdminServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	AdminServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewAdminServer(di AdminServerDI) *AdminServer {
	return &AdminServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
}

func (s *AdminServer) Run() error {
	s.WithRouters(router.NewAdminRouter(&s.middlewareTransport, s.handlerTransport))
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf(":%d", s.Config.Server.AdminPort)
	s.Logger.WithField("addr", addr).Info("Starting admin server")
	return s.Router.Listen(addr)
}

func (s *AdminServer) Shutdown() error {
	return s.Router.Shutdown()
}
