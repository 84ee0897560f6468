package api

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lox/airquality/internal/imagegen"
	"github.com/lox/airquality/internal/session"
)

// sessionCookie carries the id of the browser's loaded session.
const sessionCookie = "aq_session"

type Server struct {
	sessions *session.Manager
	cache    *imagegen.Cache
	tmpl     *template.Template
	validate *validator.Validate
	logger   *slog.Logger
	listen   string
}

func NewServer(sessions *session.Manager, listen string, cacheTTL time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sessions: sessions,
		cache:    imagegen.NewCache(cacheTTL),
		tmpl:     newTemplates(),
		logger:   logger.With("component", "api"),
		listen:   listen,
	}
	s.validate = newValidator(sessions.MetSet())
	sessions.OnEvict = func(id string) {
		s.cache.DeletePrefix(id + "/")
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/load", s.handleLoad)
	r.Get("/charts/{chart}.{format}", s.handleChart)
	r.Get("/preview.png", s.handlePreview)
	r.Get("/api/stations", s.handleAPIStations)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// currentSession returns the session for the request's cookie, or the
// default session.
func (s *Server) currentSession(r *http.Request) (*session.Session, bool) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	return s.sessions.Get(id)
}
