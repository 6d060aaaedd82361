package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomz197/flak/internal/cli"
	"github.com/tomz197/flak/internal/client"
	"github.com/tomz197/flak/internal/config"
	"github.com/tomz197/flak/internal/draw"
	"github.com/tomz197/flak/internal/report"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultMaxSessions = 64
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "flak-ssh",
		Short:        "Serve flak over SSH, one game per connection",
		SilenceUsage: true,
		RunE:         run,
	}
	cli.AddFlags(cmd)
	f := cmd.Flags()
	f.String("host", config.GetEnv("SSH_HOST", defaultHost), "listen host")
	f.String("port", config.GetEnv("SSH_PORT", defaultPort), "listen port")
	f.String("host-key", config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath), "host key path, generated if missing")
	f.Int("max-sessions", config.GetEnvInt("SSH_MAX_SESSIONS", defaultMaxSessions), "concurrent games before new connections are turned away")
	return cmd
}

// gameServer hands out one client and session per SSH connection.
type gameServer struct {
	settings    cli.Settings
	profiles    config.Profiles
	log         *log.Logger
	maxSessions int

	ctx      context.Context // Cancelled on server shutdown
	sessions sync.WaitGroup
	active   atomic.Int64
}

func run(cmd *cobra.Command, _ []string) error {
	v, err := cli.NewViper(cmd)
	if err != nil {
		return err
	}
	settings := cli.Load(v)
	host := v.GetString("host")
	port := v.GetString("port")
	hostKeyPath := v.GetString("host-key")

	logger, closeLog, err := settings.OpenLog(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	profiles, err := settings.LoadProfiles()
	if err != nil {
		return err
	}
	if settings.Difficulty != "" {
		if _, err := profiles.Lookup(settings.Difficulty); err != nil {
			return err
		}
	}

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "workingDir", workingDir)

	ctx, cancelSessions := context.WithCancel(cmd.Context())
	defer cancelSessions()
	gs := &gameServer{
		settings:    settings,
		profiles:    profiles,
		log:         logger,
		maxSessions: v.GetInt("max-sessions"),
		ctx:         ctx,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gs.middleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down server")

	// Stop every running game; players see their summary before the
	// connection closes.
	cancelSessions()
	if !gs.wait(config.ShutdownGrace) {
		logger.Warn("sessions still running after grace period", "grace", config.ShutdownGrace)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// middleware runs one game for the SSH session.
func (gs *gameServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		if !gs.acquire() {
			gs.log.Warn("server full, connection refused", "user", sess.User(), "max", gs.maxSessions)
			fmt.Fprintln(sess, "Server is full, please try again later.")
			return
		}
		defer gs.release()

		logger := gs.log.With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		// The game ends when the player disconnects or the server stops.
		ctx, cancel := context.WithCancel(gs.ctx)
		defer cancel()
		stopOnDisconnect := context.AfterFunc(sess.Context(), cancel)
		defer stopOnDisconnect()

		c := client.New(bufio.NewReader(sess), sess, client.Options{
			Profiles:     gs.profiles,
			Difficulty:   gs.settings.Difficulty,
			TermSizeFunc: sizeTracker.getSize,
			Logger:       logger,
			Seed:         gs.settings.Seed,
		})
		res, err := c.Run(ctx)
		if err != nil {
			logger.Error("game error", "err", err)
		}
		if res != nil {
			summary := report.FromResult(*res)
			if err := report.NewPrinter(sess, gs.settings.NoColor).Print(summary); err != nil {
				logger.Debug("summary not delivered", "err", err)
			}
		}

		logger.Info("session ended")
		next(sess)
	}
}

// acquire reserves a game slot.
func (gs *gameServer) acquire() bool {
	n := gs.active.Add(1)
	if gs.maxSessions > 0 && n > int64(gs.maxSessions) {
		gs.active.Add(-1)
		return false
	}
	gs.sessions.Add(1)
	return true
}

func (gs *gameServer) release() {
	gs.active.Add(-1)
	gs.sessions.Done()
}

// wait blocks until every game session has returned or timeout elapses.
func (gs *gameServer) wait(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		gs.sessions.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		return false
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
