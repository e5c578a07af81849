package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kmviz/kmviz/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server serves the figure as an interactive page on Addr until ctx is done.
//
// Routes:
//
//	GET /          echarts page
//	GET /plot.png  rasterized plot
//	GET /plot.svg  vector plot
type Server struct {
	Addr   string
	Logger *logging.Logger

	// OnListen, when set, is called with the bound address once the
	// listener is open.
	OnListen func(addr string)
}

func (s *Server) Name() string { return "serve" }

// Handler returns the HTTP handler for fig.
func (s *Server) Handler(fig *Figure) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := fig.Chart().Render(w); err != nil {
			s.logger().Error("render page failed", "error", err)
		}
	})
	mux.HandleFunc("/plot.png", s.imageHandler(fig, ".png", "image/png"))
	mux.HandleFunc("/plot.svg", s.imageHandler(fig, ".svg", "image/svg+xml"))
	return mux
}

func (s *Server) imageHandler(fig *Figure, ext, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if err := Encode(w, fig, ext); err != nil {
			s.logger().Error("render image failed", "format", ext, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (s *Server) Render(ctx context.Context, fig *Figure) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	addr := ln.Addr().String()

	srv := &http.Server{
		Handler:           s.Handler(fig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger().Info("serving plot", "addr", addr)
	if s.OnListen != nil {
		s.OnListen(addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logger() *logging.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}
