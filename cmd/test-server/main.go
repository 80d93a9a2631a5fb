package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/apitester/internal/target"
)

func newCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:          "test-server",
		Short:        "Run a local HTTP target for api-tester",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, addr string) error {
	server := target.NewServer(addr)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Test server listening on http://localhost%s (%d CPU cores)\n", addr, runtime.NumCPU())
	fmt.Fprintf(out, "Endpoints: %s\n", strings.Join(target.Endpoints, ", "))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
