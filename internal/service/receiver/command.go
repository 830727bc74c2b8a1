package receiver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-tone/internal/api/grpc/delivery"
	"github.com/oshokin/alarm-tone/internal/config"
	"github.com/oshokin/alarm-tone/internal/logger"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
	repository "github.com/oshokin/alarm-tone/internal/repository/delivery"
	"github.com/oshokin/alarm-tone/internal/service/common"
	"github.com/oshokin/alarm-tone/internal/version"
)

// Options controls the alarm-tone-receiver process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file. Empty means built-in defaults.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StorageDir overrides the directory delivered files are kept in.
	StorageDir string
	// HTTPAddress overrides the address of the health and metrics endpoints.
	HTTPAddress string
	// Ready, when set, receives the bound gRPC address once the server accepts connections.
	Ready chan<- string
}

const shutdownTimeout = 5 * time.Second

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server, and the HTTP server when configured, and blocks
// until the context is canceled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-tone-receiver")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := repository.NewFileRepository(settings.StorageDir)
	if err != nil {
		return fmt.Errorf("initialise repository: %w", err)
	}

	svc := newService(repo)

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(loggingInterceptor(ctx)),
		grpc.MaxRecvMsgSize(common.MaxMessageSize),
		grpc.MaxSendMsgSize(common.MaxMessageSize),
	)
	pb.RegisterDeliveryServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Receiver listening", append([]any{
		"listen_address", lis.Addr().String(),
		"storage_dir", settings.StorageDir,
		"http_address", settings.HTTPAddress,
	}, version.KV()...)...)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if settings.HTTPAddress != "" {
		httpServer := &http.Server{
			Addr:              settings.HTTPAddress,
			Handler:           newRouter(ctx, svc),
			ReadHeaderTimeout: shutdownTimeout,
		}

		group.Go(func() error {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve HTTP: %w", err)
			}

			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			return httpServer.Shutdown(shutdownCtx)
		})
	}

	if opts.Ready != nil {
		opts.Ready <- lis.Addr().String()
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Receiver stopped")

	return nil
}

func loadSettings(opts *Options) (*config.Receiver, error) {
	settings := config.DefaultReceiver()

	if opts.ConfigPath != "" {
		loaded, err := config.LoadReceiver(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}

		settings = loaded
	}

	if opts.StorageDir != "" {
		settings.StorageDir = opts.StorageDir
	}

	if opts.HTTPAddress != "" {
		settings.HTTPAddress = opts.HTTPAddress
	}

	return settings, nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
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

	// Bind on all interfaces.
	return ":" + port, nil
}

func loggingInterceptor(ctx context.Context) grpc.UnaryServerInterceptor {
	return func(
		callCtx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		started := time.Now()
		resp, err := handler(logger.ToContext(callCtx, logger.FromContext(ctx)), req)

		logger.DebugKV(ctx, "gRPC call",
			"method", info.FullMethod,
			"duration", time.Since(started),
			"error", err)

		return resp, err
	}
}
