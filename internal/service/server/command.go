package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/local-notification/internal/api/grpc/notification"
	"github.com/oshokin/local-notification/internal/config"
	"github.com/oshokin/local-notification/internal/logger"
)

// Options controls the notifyd process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the listen address derived from config.
	ListenAddress string
	// AlarmDB overrides the SQLite file holding pending alerts.
	AlarmDB string
	// Extras are launch parameters given as key=value on the command line.
	// When any launch flag is set the intent file is ignored.
	Extras []string
	// Action is the launch deep-link action.
	Action string
	// URI is the launch deep-link URI.
	URI string
}

// shutdownTimeout bounds how long stopping waits for firing alerts.
const shutdownTimeout = 5 * time.Second

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts notifyd and blocks until ctx is canceled or the server stops.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "notifyd")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	if opts.AlarmDB != "" {
		cfg.AlarmDB = opts.AlarmDB
	}

	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	d, err := newDaemon(ctx, cfg, opts)
	if err != nil {
		return err
	}

	defer d.close(ctx)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.NewServer(d.facade, d.alarms).Register(grpcServer)

	logger.InfoKV(ctx, "Notification daemon listening",
		"listen_address", listenAddress,
		"alarm_db", cfg.AlarmDB,
		"permission", cfg.Permission,
		"presenter", cfg.Presenter)

	// done is closed once GracefulStop returns, so Run never outlives the server.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress returns override when set, otherwise the port of configAddr
// bound on all interfaces (e.g. "localhost:7070" -> ":7070").
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
