package leaderboard

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// StoreOpener connects to a store. It runs in the background so the service
// can answer health checks while the database comes up.
type StoreOpener func(ctx context.Context) (Store, error)

// Server runs the leaderboard API.
type Server struct {
	addr    string
	logger  *log.Logger
	hub     *Hub
	handler *Handler
	http    *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, size int, logger *log.Logger) *Server {
	hub := NewHub(logger)
	handler := NewHandler(logger, hub, size)
	return &Server{
		addr:    addr,
		logger:  logger.WithPrefix("server"),
		hub:     hub,
		handler: handler,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the API handler.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully. When open is non-nil the store is attached once it succeeds;
// if it fails the API keeps answering 503.
func (s *Server) Serve(ctx context.Context, l net.Listener, open StoreOpener) error {
	g, ctx := errgroup.WithContext(ctx)

	if open != nil {
		g.Go(func() error {
			store, err := open(ctx)
			if err != nil {
				s.logger.Error("Store init failed, API returns 503", "error", err)
				return nil
			}
			s.handler.SetStore(store)
			s.logger.Info("Store ready")
			return nil
		})
	}

	g.Go(func() error {
		s.logger.Info("Listening", "addr", l.Addr().String())
		if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		s.logger.Info("Shutting down")
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, open StoreOpener) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l, open)
}
