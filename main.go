package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/graphql"
	"github.com/tournevent/melhorenvio/internal/server"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "melhorenvio",
	Short:   "Melhor Envio cart bridge for WooCommerce orders",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate cart payload JSON files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	// Storage and the Melhor Envio client
	st, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client := initAPIClient(cfg)

	catalog, err := initCatalog(cfg)
	if err != nil {
		return err
	}

	rates, err := initRateSettings(cfg)
	if err != nil {
		return err
	}

	app := initCart(cfg, st, client, catalog, logger)

	logger.Info("Starting Melhor Envio cart bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
		zap.Int("methods", len(catalog.Enabled())),
	)

	// Start HTTP server
	srv := server.New(server.Config{
		Port:        cfg.Port,
		Version:     cfg.Version,
		Environment: cfg.Environment,
		APIKeyHash:  cfg.APIKeyHash,
		Rates:       rates,
	}, server.Deps{
		Cart:     app.service,
		Catalog:  catalog,
		Quotes:   app.quotes,
		Seller:   app.seller,
		Payloads: st,
		Invoices: st,
		GraphQL:  graphql.NewHandler(graphql.NewResolver(app.service, catalog, logger), logger),
	}, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

var errInvalidPayloads = errors.New("one or more payloads are invalid")

// runValidate checks every file concurrently and prints the results in
// argument order.
func runValidate(cmd *cobra.Command, args []string) error {
	results := make([][]string, len(args))

	g, _ := errgroup.WithContext(cmd.Context())
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			var payload melhorenvio.CartPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("decoding %s: %w", path, err)
			}
			results[i] = cart.Validate(&payload)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := false
	for i, path := range args {
		if len(results[i]) == 0 {
			fmt.Fprintf(out, "%s: ok\n", path)
			continue
		}
		invalid = true
		fmt.Fprintf(out, "%s:\n", path)
		for _, msg := range results[i] {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
	if invalid {
		return errInvalidPayloads
	}
	return nil
}
