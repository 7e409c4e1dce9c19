// Package daemon provides the prefq daemon orchestration and lifecycle management.
//
// This package wires the rendezvous server together from its parts and runs
// it until the process is interrupted. It owns no protocol logic itself: the
// pending-query store, the media folder and the HTTP API each live in their
// own internal package and are only assembled here.
//
// STARTUP SEQUENCE:
// 1. Reserve the HTTP port with a pre-bound listener so a busy port fails fast
// 2. Open the media folder and sweep files left behind by a previous process
// 3. Load the handshake keys when the shared secret is configured
// 4. Build the API server around a fresh, empty query store
// 5. Serve until SIGINT/SIGTERM, then shut down gracefully within a timeout
//
// STATE:
// All pending queries and the feedback ledger live in memory. A restart
// starts from an empty store, which is why stale media is swept on startup:
// no surviving record can ever reference it again.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/concave-dev/prefq/cmd/prefqd/config"
	"github.com/concave-dev/prefq/internal/api"
	"github.com/concave-dev/prefq/internal/auth"
	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/media"
	"github.com/concave-dev/prefq/internal/netutil"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/concave-dev/prefq/internal/version"
	"golang.org/x/sync/errgroup"
)

// buildAPIConfig transforms daemon configuration into HTTP API server configuration.
func buildAPIConfig(store *query.Store, files *media.Store, verifier *auth.Verifier) *api.Config {
	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = config.Global.Host
	apiConfig.BindPort = config.Global.Port
	apiConfig.Store = store
	apiConfig.Media = files
	apiConfig.Verifier = verifier
	apiConfig.RateLimit = config.Global.RateLimit
	apiConfig.RateBurst = config.Global.RateBurst
	apiConfig.RaterReloadSeconds = config.Global.RaterReloadSeconds
	apiConfig.Version = version.PrefqdVersion
	return apiConfig
}

// buildVerifier loads the handshake keys, or returns nil when the shared
// secret is not configured.
func buildVerifier() (*auth.Verifier, error) {
	if !config.Global.AuthEnabled() {
		logging.Warn("Shared-secret handshake disabled: any client can submit queries")
		return nil, nil
	}

	verifier, err := auth.NewVerifier(config.Global.SSHPub, config.Global.SSHPriv, config.Global.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to load handshake keys: %w", err)
	}
	logging.Info("Shared-secret handshake enabled with public key %s", config.Global.SSHPub)
	return verifier, nil
}

// openMedia prepares the media folder and removes files no live record can
// reference, including uploads interrupted by a crash.
func openMedia() (*media.Store, error) {
	files, err := media.NewStore(config.Global.VideoDir)
	if err != nil {
		return nil, err
	}

	removed, err := files.SweepOrphans(nil)
	if err != nil {
		// Leftovers only cost disk space; serving can still proceed
		logging.Warn("Failed to sweep media folder %s: %v", files.Dir(), err)
	}
	if removed > 0 {
		logging.Info("Removed %d media files left by a previous run", removed)
	}

	logging.Info("Media folder: %s", files.Dir())
	return files, nil
}

// Run starts the daemon and blocks until ctx is cancelled, SIGINT or SIGTERM
// arrives, or the HTTP server fails.
func Run(ctx context.Context) error {
	logging.SetLevel(config.Global.LogLevel)
	logging.Info("Starting prefq daemon v%s", version.PrefqdVersion)

	// Reserve the port before touching the filesystem so that a second
	// daemon on the same port fails without sweeping the first one's media.
	portBinder := netutil.NewPortBinder()
	listener, err := portBinder.BindTCP(config.Global.Host, config.Global.Port)
	if err != nil {
		var inUse *netutil.AddressInUseError
		if errors.As(err, &inUse) {
			logging.Error("Port %d is already in use on %s", inUse.Port, inUse.Address)
			return fmt.Errorf("cannot start prefqd: %w", err)
		}
		logging.Error("Failed to bind HTTP listener: %v", err)
		return err
	}

	files, err := openMedia()
	if err != nil {
		listener.Close()
		logging.Error("Failed to open media folder: %v", err)
		return err
	}

	verifier, err := buildVerifier()
	if err != nil {
		listener.Close()
		logging.Error("%v", err)
		return err
	}

	store := query.NewStore()
	server, err := api.NewServerWithListener(buildAPIConfig(store, files, verifier), listener)
	if err != nil {
		listener.Close()
		logging.Error("Failed to create HTTP server: %v", err)
		return fmt.Errorf("failed to create API server: %w", err)
	}

	announce(listener)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down prefq daemon...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Global.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("Daemon stopped with error: %v", err)
		return err
	}

	if stats := store.Stats(); stats.Remaining > 0 || stats.Ledger > 0 {
		logging.Warn("Discarding %d unresolved queries and %d undrained answers",
			stats.Remaining, stats.Ledger)
	}
	logging.Success("prefq daemon stopped")
	return nil
}

// announce prints where producers and raters should point their clients.
func announce(listener net.Listener) {
	port := config.Global.Port
	if tcp, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	base := "http://" + net.JoinHostPort(config.Global.Host, strconv.Itoa(port))

	line := "  prefqctl run --url=" + base
	separator := strings.Repeat("-", max(len(line), 50))

	logging.Info("%s", separator)
	logging.Info("Raters open: %s/", base)
	logging.Info("Producers submit with:")
	logging.Info("%s", line)
	logging.Info("%s", separator)
}
