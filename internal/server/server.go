// If you are AI: This file wires the RTMP listener, the HTTP router and the transcode manager
// into one process lifecycle.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/config"
	"relaycast/internal/core/bus"
	"relaycast/internal/ffx"
	"relaycast/internal/logger"
	"relaycast/internal/metrics"
	"relaycast/internal/svc/api"
	"relaycast/internal/svc/health"
	"relaycast/internal/svc/httpflv"
	"relaycast/internal/svc/rtmp"
	"relaycast/internal/svc/transcode"
	"relaycast/internal/svc/wsflv"
)

// eventBuffer is how many publish events may queue before publishers wait for the transcoder.
const eventBuffer = 64

// Server owns every listener and background service of the process.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	events  *bus.Events
	rtmp    *rtmp.Server
	router  *chi.Mux

	httpServer *http.Server
	httpLn     net.Listener
	transcoder *transcode.Manager
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New builds the server. Nothing listens until Start.
func New(cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, log: log, metrics: metrics.New()}

	services := []string{"rtmp", "api", "ws_flv", "http_flv"}
	if cfg.Transcode.Enabled {
		// Events are only produced when someone consumes them.
		s.events = bus.NewEvents(eventBuffer)
		services = append(services, "transcode")
	}
	s.rtmp = rtmp.NewServer(rtmp.OptionsFromConfig(cfg.RTMP), bus.NewRegistry[*rtmp.Session](), s.events, s.metrics, log)
	s.router = s.routes(services)
	s.httpServer = &http.Server{Handler: s.router}
	return s
}

// routes builds the HTTP router.
func (s *Server) routes(services []string) *chi.Mux {
	registry := s.rtmp.Registry()

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(s.log))
	r.Use(metrics.RequestMiddleware(s.metrics))
	r.Get("/metrics", s.metrics.Handler(s.updateGauges).ServeHTTP)

	health.New(map[string]health.Check{"rtmp": s.rtmp.Healthy}).RegisterRoutes(r)
	api.NewService(registry, s.metrics, services, s.log).RegisterRoutes(r)
	wsflv.NewService(registry, s.log).RegisterRoutes(r)
	httpflv.NewService(registry, s.log).RegisterRoutes(r)
	if s.cfg.Transcode.Enabled {
		media := http.StripPrefix("/media/", http.FileServer(http.Dir(s.cfg.Transcode.MediaRoot)))
		r.Get("/media/*", media.ServeHTTP)
	}
	return r
}

// updateGauges refreshes gauges before a scrape.
func (s *Server) updateGauges() {
	registry := s.rtmp.Registry()
	s.metrics.SetSessions(registry.Count())
	s.metrics.SetPublishers(registry.PublisherCount())
	if s.transcoder != nil {
		s.metrics.SetTranscodeTasks(s.transcoder.TaskCount())
	}
}

// Start binds both listeners and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.rtmp.Listen(fmt.Sprintf(":%d", s.cfg.Server.RTMPPort)); err != nil {
		return fmt.Errorf("rtmp listen: %w", err)
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Server.HTTPPort))
	if err != nil {
		s.rtmp.Close()
		return fmt.Errorf("http listen: %w", err)
	}
	s.httpLn = ln

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	if s.events != nil {
		s.startTranscoder(runCtx)
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.rtmp.Serve(); err != nil {
			s.log.Error("rtmp server error", "error", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", "error", err)
		}
	}()

	s.log.Info("server started", "rtmp", s.rtmp.Addr().String(), "http", ln.Addr().String())
	return nil
}

// startTranscoder runs the manager, or drops the events queue when ffmpeg is missing.
func (s *Server) startTranscoder(ctx context.Context) {
	binary, err := ffx.Locate(s.cfg.Transcode.FFmpeg)
	if err != nil {
		s.log.Warn("transcoding disabled", "error", err)
		s.events.Stop()
		return
	}
	port := s.rtmp.Addr().(*net.TCPAddr).Port
	runner := transcode.FFmpegRunner{Logger: s.log}
	s.transcoder = transcode.NewManager(s.cfg.Transcode, port, binary, s.events, runner, s.log)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.transcoder.Run(ctx)
	}()
	s.log.Info("transcoding enabled", "ffmpeg", binary, "media_root", s.cfg.Transcode.MediaRoot)
}

// RTMPAddr returns the bound RTMP address.
func (s *Server) RTMPAddr() net.Addr {
	return s.rtmp.Addr()
}

// HTTPAddr returns the bound HTTP address, or nil before Start.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpLn == nil {
		return nil
	}
	return s.httpLn.Addr()
}

// Shutdown stops HTTP, disconnects every RTMP session, then stops transcoding.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.rtmp.Close(); err == nil {
		err = cerr
	}
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.transcoder != nil {
		s.transcoder.Stop()
	}
	return err
}
