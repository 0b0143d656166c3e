package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"modelview/internal/channel"
	"modelview/internal/config"
	"modelview/internal/httpapi"
	"modelview/internal/logging"
	"modelview/internal/scene"
	"modelview/internal/session"
)

const shutdownTimeout = 5 * time.Second

// App is a running viewer: session loop, channel and optional status server.
type App struct {
	Session *session.Session
	Log     zerolog.Logger

	conn       *channel.Conn
	srv        *http.Server
	statusAddr string
	cancel     context.CancelFunc
	logFile    io.Closer
}

// NewLogger builds the root logger from cfg, writing to w or to opts.LogFile.
func NewLogger(cfg config.Config, opts *Options, w io.Writer) (zerolog.Logger, io.Closer, error) {
	var closer io.Closer
	if opts != nil && opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	l, err := logging.New(cfg.LogLevel, cfg.LogFormat, w)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return zerolog.Nop(), nil, err
	}
	return l, closer, nil
}

// Start runs the session loop, dials the backend and, when configured,
// serves the status API. A failed dial is reported through the session and
// does not fail Start.
func Start(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)
	sess := session.NewWithConfig(session.Config{
		URL:            cfg.URL,
		RequestTimeout: cfg.RequestTimeout(),
		Layout: scene.Layout{
			Spacing:        cfg.SlotSpacing,
			MinDistance:    cfg.MinCameraDistance,
			DistanceFactor: cfg.CameraDistanceFactor,
		},
		Logger: &log,
	})
	a := &App{Session: sess, Log: log, cancel: cancel}
	go func() {
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("session loop exited")
		}
	}()

	if cfg.StatusAddr != "" {
		if err := a.serveStatus(ctx, cfg); err != nil {
			cancel()
			return nil, err
		}
	}

	conn, err := channel.Dial(ctx, cfg.URL, channel.Options{
		WriteTimeout:  cfg.WriteTimeout(),
		MaxFrameBytes: cfg.MaxFrameBytes,
	})
	if err != nil {
		log.Error().Err(err).Str("url", cfg.URL).Msg("connect failed")
		_ = sess.ConnectFailed(err)
		return a, nil
	}
	log.Info().Str("url", cfg.URL).Msg("connected")
	a.conn = conn
	conn.Listen(sess.Bind(conn))
	return a, nil
}

func (a *App) serveStatus(ctx context.Context, cfg config.Config) error {
	httpapi.SetLogger(a.Log.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(ctx)
	httpapi.Configure(httpapi.Options{
		AccessLog: cfg.AccessLog,
		CORS: httpapi.CORS{
			Enabled:        cfg.CORS.Enabled,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
		},
	})
	ln, err := net.Listen("tcp", cfg.StatusAddr)
	if err != nil {
		return fmt.Errorf("status api listen: %w", err)
	}
	a.statusAddr = ln.Addr().String()
	a.srv = &http.Server{Handler: httpapi.NewMux(a.Session), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.Log.Info().Str("addr", a.statusAddr).Msg("status api listening")
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Error().Err(err).Msg("status api")
		}
	}()
	return nil
}

// StatusAddr is the bound status API address, or "" when disabled.
func (a *App) StatusAddr() string { return a.statusAddr }

// Close stops the server, the channel and the session loop, in that order.
func (a *App) Close() error {
	var errs []error
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("graceful shutdown: %w", err))
		}
		cancel()
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.cancel()
	select {
	case <-a.Session.Done():
	case <-time.After(shutdownTimeout):
		errs = append(errs, errors.New("session loop did not stop"))
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	return errors.Join(errs...)
}
