// Package server exposes a service.TodoService over HTTP. Routes are named
// after the RPC procedures they carry: todo.getAll, todo.create,
// todo.delete and todoStatus.update.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
)

const (
	PathGetAll       = "/api/todo.getAll"
	PathCreate       = "/api/todo.create"
	PathDelete       = "/api/todo.delete"
	PathUpdateStatus = "/api/todoStatus.update"
	PathHealth       = "/healthz"
)

// Request bodies.
type (
	GetAllRequest struct {
		Statuses []model.Status `json:"statuses"`
	}
	CreateRequest struct {
		Body string `json:"body"`
	}
	DeleteRequest struct {
		ID *int64 `json:"id"`
	}
	UpdateStatusRequest struct {
		TodoID *int64       `json:"todoId"`
		Status model.Status `json:"status"`
	}
)

type Options struct {
	Addr string
	// Token, when non-empty, is required as a bearer token on /api routes.
	Token string
	Mode  string
}

type Server struct {
	opts   Options
	svc    service.TodoService
	router *gin.Engine
	http   *http.Server
}

// New wires the router for svc.
func New(svc service.TodoService, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	s := &Server{opts: opts, svc: svc}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.RequestID())
	r.Use(log.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET(PathHealth, func(c *gin.Context) {
		respondData(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if s.opts.Token != "" {
		api.Use(bearerAuth(s.opts.Token))
	}
	api.POST("/todo.getAll", s.getAll)
	api.POST("/todo.create", s.create)
	api.POST("/todo.delete", s.delete)
	api.POST("/todoStatus.update", s.updateStatus)

	s.router = r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.StdErrorLogger(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("todo service listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down todo service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func bearerAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		got, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			got, ok = strings.CutPrefix(h, "bearer ")
		}
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
			respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid bearer token")
			return
		}
		c.Next()
	}
}

func (s *Server) getAll(c *gin.Context) {
	var req GetAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	todos, err := s.svc.ListTodos(c.Request.Context(), req.Statuses)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	respondData(c, http.StatusOK, todos)
}

func (s *Server) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	todo, err := s.svc.CreateTodo(c.Request.Context(), req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.Debug().Int64("id", todo.ID).Msg("todo created")
	respondData(c, http.StatusCreated, todo)
}

func (s *Server) delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ID == nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "id is required")
		return
	}
	if err := s.svc.DeleteTodo(c.Request.Context(), *req.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) updateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TodoID == nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "todoId is required")
		return
	}
	todo, err := s.svc.UpdateStatus(c.Request.Context(), *req.TodoID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, todo)
}
