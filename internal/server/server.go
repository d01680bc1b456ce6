package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"notesbuzz/internal/blobstore"
	"notesbuzz/internal/logging"
	"notesbuzz/internal/metrics"
	"notesbuzz/internal/users"
)

const defaultMaxUploadBytes = 50 << 20

// UserStore is the credential store the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, username, email, password string) (*users.User, error)
	Authenticate(ctx context.Context, username, password string) error
}

// FileStore is the blob store the file handlers need.
type FileStore interface {
	Put(ctx context.Context, in blobstore.PutInput) (blobstore.StoredFile, error)
	ListByPrefix(ctx context.Context, prefix string) ([]blobstore.StoredFile, error)
	Get(ctx context.Context, id string) (blobstore.StoredFile, io.ReadCloser, error)
	Rename(ctx context.Context, id, filename string) (blobstore.StoredFile, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Config struct {
	Addr           string // e.g. ":5000"
	Users          UserStore
	Files          FileStore
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
	CORSOrigins    []string
}

type Server struct {
	httpServer     *http.Server
	users          UserStore
	files          FileStore
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

func New(cfg Config) *Server {
	s := &Server{
		users:          cfg.Users,
		files:          cfg.Files,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("GET /file/{id}", s.handleDownload)
	mux.HandleFunc("PATCH /file/{id}", s.handleRename)
	mux.HandleFunc("DELETE /delete/{id}", s.handleDelete)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
	})

	// Wrap middleware: requestID -> logging -> cors -> security headers -> mux
	var handler http.Handler = mux
	handler = securityHeadersMiddleware(handler)
	handler = c.Handler(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
