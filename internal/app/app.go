package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/felixbrock/flightprice/internal/config"
	"github.com/felixbrock/flightprice/internal/domain"
	"github.com/felixbrock/flightprice/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var static embed.FS

type ModelSource interface {
	Current() (*model.Model, bool)
}

type PredictionRepo interface {
	Insert(ctx context.Context, prediction domain.Prediction) error
	Recent(ctx context.Context, limit int) ([]domain.Prediction, error)
}

type App struct {
	Config  config.Config
	Models  ModelSource
	Metrics *Metrics
	// Predictions is nil when history is disabled.
	Predictions PredictionRepo
	// Assets holds index.html and everything under /static/.
	Assets fs.FS

	limiter *ipLimiter
}

func New(cfg config.Config, models ModelSource, predictions PredictionRepo) (*App, error) {
	var assets fs.FS
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err != nil {
			return nil, fmt.Errorf("static dir: %w", err)
		}
		assets = os.DirFS(cfg.StaticDir)
	} else {
		sub, err := fs.Sub(static, "static")
		if err != nil {
			return nil, err
		}
		assets = sub
	}

	a := &App{
		Config:      cfg,
		Models:      models,
		Metrics:     NewMetrics(),
		Predictions: predictions,
		Assets:      assets,
	}
	if cfg.RateLimit > 0 {
		a.limiter = newIPLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	return a, nil
}

func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(middleware.RealIP)
	r.Use(observe(a.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors(a.Config.AllowedOrigins))

	r.NotFound(ComponentHandler(a.notFound).ServeHTTP)
	r.MethodNotAllowed(ComponentHandler(a.methodNotAllowed).ServeHTTP)

	r.Method(http.MethodGet, "/", ComponentHandler(a.index))
	r.Get("/index.html", a.form)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(a.Assets))))

	r.Method(http.MethodGet, "/api", JSONHandler(a.apiRoot))
	r.With(a.limiter.middleware).Method(http.MethodPost, "/predict", JSONHandler(a.predict))
	for _, opt := range optionRoutes {
		r.Method(http.MethodGet, opt.path, JSONHandler(a.options(opt.column, opt.key)))
	}
	r.Method(http.MethodGet, "/predictions", JSONHandler(a.history))
	r.Method(http.MethodGet, "/healthz", JSONHandler(a.health))
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	return r
}

// Start listens on the configured port and serves until ctx is done.
func (a *App) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Addr())
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then drains in-flight requests for
// up to the configured shutdown timeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("App running", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	slog.Info("App stopped")
	return nil
}
