package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
	"github.com/joseph-ayodele/remote-compute/internal/async"
	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/pipeline"
	"github.com/joseph-ayodele/remote-compute/internal/process"
	"github.com/joseph-ayodele/remote-compute/internal/server"
	"github.com/joseph-ayodele/remote-compute/internal/workspace"
)

const (
	shutdownTimeout = 30 * time.Second
	configDebounce  = 500 * time.Millisecond
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "computed",
		Short:        "Compile and run GPU programs submitted by remote clients",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (YAML, JSON or TOML); defaults to $CONFIG_FILE or ./computed.*")
	return cmd
}

func run(parent context.Context, configPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}
	logger, level := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only the log level is applied live; everything else needs a restart
	if cfg.ConfigFile != "" {
		err := common.WatchConfig(ctx, cfg.ConfigFile, configDebounce, logger, func(next *common.Config) {
			level.Set(common.ParseLevel(next.Log.Level))
			logger.Info("configuration reloaded", "file", next.ConfigFile, "log_level", next.Log.Level)
		})
		if err != nil {
			logger.Warn("config file will not be watched", "file", cfg.ConfigFile, "error", err)
		}
	}

	// Scratch root must exist before the first job is accepted
	workspaces, err := workspace.NewManager(cfg.Workspace.ScratchRoot, logger)
	if err != nil {
		logger.Error("failed to prepare scratch root", "root", cfg.Workspace.ScratchRoot, "error", err)
		return err
	}
	if cfg.Workspace.SweepAfter > 0 {
		removed, err := workspaces.Sweep(cfg.Workspace.SweepAfter)
		if err != nil {
			logger.Warn("workspace sweep incomplete", "removed", removed, "error", err)
		} else if removed > 0 {
			logger.Info("removed stale workspaces", "removed", removed)
		}
	}

	if _, err := exec.LookPath(cfg.Compiler.Path); err != nil {
		logger.Warn("compiler not found; jobs will fail to compile", "compiler", cfg.Compiler.Path, "error", err)
	}

	// Job pipeline
	runner := process.NewRunner(logger)
	pipe := pipeline.NewPipeline(logger, workspaces,
		pipeline.NewCompileStage(runner, cfg.Compiler.Path, cfg.Compiler.RelayDiagnostics, logger),
		pipeline.NewExecuteStage(runner, logger),
	)
	jobs := async.NewDispatcher(pipe, logger,
		async.WithChunkBuffer(cfg.Jobs.ChunkBuffer),
		async.WithKillOnDisconnect(cfg.Jobs.KillOnDisconnect),
	)

	// gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return err
	}
	grpcServer := grpc.NewServer()
	computev1.RegisterCudaExecutorServer(grpcServer, server.NewComputeService(jobs, logger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(computev1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	// Optional HTTP gateway
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           server.NewGateway(jobs, logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("computed listening", "addr", lis.Addr().String(), "compiler", cfg.Compiler.Path, "scratch_root", workspaces.Root())
		return grpcServer.Serve(lis)
	})
	if httpServer != nil {
		g.Go(func() error {
			logger.Info("http gateway listening", "addr", httpServer.Addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http gateway shutdown", "error", err)
			}
		}
		grpcServer.GracefulStop()
		jobs.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return err
	}
	logger.Info("stopped")
	return nil
}
