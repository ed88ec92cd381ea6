package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/shelf/internal/server"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Port int    `short:"p" help:"Listen port (default server.port)"`
	Host string `help:"Listen address" default:"0.0.0.0"`
}

var serve = server.Serve

func (s *ServeCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		port := s.Port
		if port == 0 {
			port = a.cfg.Server.Port
		}
		if err := a.store.Init(ctx); err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		addr := fmt.Sprintf("%s:%d", s.Host, port)
		return serve(ctx, addr, &server.Handler{Catalog: a.catalog, Resolver: a.resolver})
	})
}
