package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ssactivewear-mcp/internal/config"
	"ssactivewear-mcp/internal/events"
	"ssactivewear-mcp/internal/mcp"
	productsvc "ssactivewear-mcp/internal/service/product"
	"ssactivewear-mcp/internal/ssapi"
	"ssactivewear-mcp/internal/tools"
)

var (
	verbose    bool
	envFile    string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "ssactivewear-mcp",
	Short: "S&S Activewear catalog tools over the Model Context Protocol (stdio)",
	Long: `Serves search_products, get_product_details, check_inventory, get_pricing and
download_product_data to an MCP client over stdin/stdout.

Credentials come from SS_ACCOUNT_NUMBER and SS_API_KEY (environment, .env file
or --config YAML). Logs go to stderr.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored when absent)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(verbose || cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	cfg.Report(logger)

	client := ssapi.New(cfg.APIOptions(), logger)
	service := productsvc.New(client, productsvc.Options{PreferredWarehouses: cfg.PreferredWarehouses}, logger)
	publisher := events.New(cfg.KafkaBroker, cfg.EventsTopic, logger)
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(tools.New(service, publisher, logger), logger)
	logger.Info("S&S Activewear MCP server is running", zap.String("protocol", mcp.ProtocolVersion))
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
