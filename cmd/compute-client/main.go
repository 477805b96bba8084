package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
	"github.com/joseph-ayodele/remote-compute/internal/client"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverAddr string
		flags      []string
	)
	cmd := &cobra.Command{
		Use:           "compute-client <file.cu>",
		Short:         "Remote CUDA executor client",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, args[0], serverAddr, flags)
		},
	}

	_ = godotenv.Load()
	def := client.DefaultServer
	if v := os.Getenv("COMPUTE_SERVER"); v != "" {
		def = v
	}
	cmd.Flags().StringVarP(&serverAddr, "server", "s", def, "remote host address (e.g. http://192.168.1.50:50051)")
	cmd.Flags().StringArrayVarP(&flags, "flags", "f", nil, "extra compiler flag, repeatable (e.g. -f=-arch=sm_80)")
	return cmd
}

func run(ctx context.Context, path, serverAddr string, flags []string) error {
	req, err := client.ReadSource(path, flags)
	if err != nil {
		return err
	}

	p := client.NewPrinter(os.Stdout, os.Stderr)
	p.Connecting(serverAddr)

	conn, err := grpc.NewClient(client.Target(serverAddr), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect %s: %w", serverAddr, err)
	}
	defer conn.Close()

	return client.Execute(ctx, computev1.NewCudaExecutorClient(conn), req, p)
}
