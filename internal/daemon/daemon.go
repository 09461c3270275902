package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"termchat/internal/logging"
	"termchat/internal/store"
)

type Daemon struct {
	addr    string
	tokens  []string
	version string
	repo    store.Repository
	logger  logging.Logger
	server  *http.Server
	// ready receives the bound address once the listener is up.
	ready chan string
}

type Option func(*Daemon)

func WithLogger(logger logging.Logger) Option {
	return func(d *Daemon) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithReady reports the listening address, which matters when addr uses
// port 0.
func WithReady(ch chan string) Option {
	return func(d *Daemon) {
		d.ready = ch
	}
}

func New(addr string, tokens []string, version string, repo store.Repository, opts ...Option) *Daemon {
	d := &Daemon{
		addr:    addr,
		tokens:  tokens,
		version: version,
		repo:    repo,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Handler builds the full middleware chain. Exposed for tests and for
// embedding the API in another server.
func (d *Daemon) Handler(shutdown func(context.Context) error) http.Handler {
	metrics := NewMetrics()
	var chats store.ChatStore
	if d.repo != nil {
		chats = d.repo.Chats()
	}
	api := &API{
		Version:  d.version,
		Service:  NewChatService(chats, WithServiceMetrics(metrics), WithServiceLogger(d.logger)),
		Metrics:  metrics,
		Shutdown: shutdown,
		Logger:   d.logger,
	}
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	return LoggingMiddleware(d.logger, metrics, TokenAuthMiddleware(d.tokens, mux))
}

func (d *Daemon) Run(ctx context.Context) error {
	if len(d.tokens) == 0 {
		return errors.New("at least one token is required")
	}
	listener, err := net.Listen("tcp", d.addr)
	if err != nil {
		return err
	}
	d.server = &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}
	d.server.Handler = d.Handler(d.server.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("server_listening", logging.F("addr", listener.Addr().String()), logging.F("store", backendName(d.repo)))
		errCh <- d.server.Serve(listener)
	}()
	if d.ready != nil {
		d.ready <- listener.Addr().String()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func backendName(repo store.Repository) string {
	if repo == nil {
		return "none"
	}
	return repo.Backend()
}
