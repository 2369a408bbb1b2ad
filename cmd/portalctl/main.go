// Command portalctl runs the gateway's reconciliation and merge pipeline from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fund-portal/backend"
	"fund-portal/config"
	"fund-portal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backendURL string
	token      string
	configPath string
	timeout    time.Duration
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Inspect fund portal submissions through the gateway pipeline",
	Long: `portalctl reconciles submission payloads, classifies statuses and assembles
merged PDFs against a fund-management-api backend, exactly as the gateway does.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (default from config / BACKEND_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("PORTAL_TOKEN"), "Bearer token (or set PORTAL_TOKEN env)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(lookupsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtimeDeps is what every backend-facing command needs.
type runtimeDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *backend.Client
	screens *services.ScreenManager
	session *services.ScreenSession
}

func newRuntime() (*runtimeDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	if err != nil {
		return nil, err
	}
	screens := services.NewScreenManager(services.NewMemoryMergedStore(0), services.NewBackendLookupSource(client), logger)
	return &runtimeDeps{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		screens: screens,
		session: screens.Open("portalctl", "cli"),
	}, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	if token == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no bearer token; the backend will likely answer 401")
	}
	return backend.WithToken(ctx, token), cancel
}
