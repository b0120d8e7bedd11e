package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzbill/kvbind/internal/runtime"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

const shutdownTimeout = 5 * time.Second

// Server exposes health, store info and Prometheus metrics for one Runtime.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.Discard()
	}
	s := &Server{rt: rt, logger: logger.WithComponent("http")}
	s.srv = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: time.Second,
		ErrorLog:          logpkg.ToStdLogger(s.logger, logpkg.WarnLevel),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestFields)
	r.Use(middleware.Recoverer)
	r.Get("/v1/healthz", s.handleHealth)
	r.Get("/v1/info", s.handleInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.rt.Gatherer(), promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Addr is the bound listener address, empty before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// requestFields attaches the request id and route to the request context so
// handlers log them through WithContext.
func requestFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logpkg.NewContext(r.Context(),
			logpkg.Str("request_id", middleware.GetReqID(r.Context())),
			logpkg.Str("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", logpkg.Err(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		s.logger.WithContext(r.Context()).Warn("health check failed", logpkg.Err(err))
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type infoResp struct {
	Engine        string `json:"engine"`
	DataDir       string `json:"dataDir"`
	MergeOperator string `json:"mergeOperator,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	db := s.rt.DB()
	if db == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
		return
	}
	s.writeJSON(w, http.StatusOK, infoResp{
		Engine:        db.Engine(),
		DataDir:       db.Path(),
		MergeOperator: s.rt.Config().MergeOperator,
	})
}
