// Package server exposes the catalog over HTTP.
package server

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
)

// MaxUploadBytes is the default size limit of an import request body.
const MaxUploadBytes = 32 << 20

// Handler serves the catalog API.
type Handler struct {
	Catalog  *catalog.Service
	Resolver *book.Resolver
	// UploadLimit overrides MaxUploadBytes when positive.
	UploadLimit int64
}

func (h *Handler) uploadLimit() int64 {
	if h.UploadLimit > 0 {
		return h.UploadLimit
	}
	return MaxUploadBytes
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors())
	r.MaxMultipartMemory = h.uploadLimit()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/books", h.ListBooks)
		api.GET("/books/:id", h.GetBook)
		api.POST("/books", h.CreateBook)
		api.PUT("/books/:id", h.UpdateBook)
		api.DELETE("/books/:id", h.DeleteBook)
		api.POST("/import/preview", h.PreviewImport)
		api.POST("/import", h.CommitImport)
		api.GET("/lookup/:isbn", h.Lookup)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Serve runs the API on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Catalog listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stdErrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down catalog server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
