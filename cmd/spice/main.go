// Command spice runs the finance dashboard backend and its terminal tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-dashboard/internal/common"
)

const defaultUserID = "local"

var (
	cfgFile string
	userID  string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spice",
		Short: "🌶️  Personal finance dashboard backend",
		Long: `spice imports bank transactions, categorizes them with keyword rules and an
AI model, and serves spending analysis to the dashboard.

"spice serve" starts the HTTP API. The other commands drive the same
services from a terminal.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/spice/config.yaml)")
	flags.StringVar(&userID, "user", defaultUserID, "user id that owns the transactions")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		importCmd(),
		uploadCmd(),
		addCmd(),
		listCmd(),
		analyzeCmd(),
		reviewCmd(),
		classifyCmd(),
		exportCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads the config file and environment, then installs the logger.
// Environment variables use the SPICE_ prefix: SPICE_LLM_PROVIDER sets llm.provider.
func initConfig(_ *cobra.Command, _ []string) error {
	if err := locateConfig(viper.GetViper(), cfgFile); err != nil {
		return err
	}

	viper.SetEnvPrefix("SPICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func locateConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(home, ".config", "spice"))
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("spice %s\n", version)
		},
	}
}
