package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/larksuite/oapi-client/cmd/lark/commands"
	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/internal/tracer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var shutdownTracer tracer.ShutdownFunc

var rootCmd = &cobra.Command{
	Use:   "lark",
	Short: "Lark open platform CLI",
	Long: `A command-line interface for the Lark / Feishu open platform.

It lists messages, chats, documents, glossary entities and mail groups
page by page, and receives pushed events over the long connection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		shutdownTracer, err = tracer.Setup(tracer.Config{
			Enabled:  viper.GetBool("trace"),
			Exporter: tracer.ExporterStdout,
		})
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}

		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.lark/config.yml)")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "open platform base URL (default https://open.feishu.cn)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "tenant or user access token")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("trace", false, "print OpenTelemetry spans to stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag(commands.KeyEndpoint, rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag(commands.KeyToken, rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag(commands.KeyOutput, rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("trace", rootCmd.PersistentFlags().Lookup("trace"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewIMCommand())
	rootCmd.AddCommand(commands.NewMailCommand())
	rootCmd.AddCommand(commands.NewDocxCommand())
	rootCmd.AddCommand(commands.NewLingoCommand())
	rootCmd.AddCommand(commands.NewMDMCommand())
	rootCmd.AddCommand(commands.NewEventsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := commands.ConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.lark/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// LARK_TOKEN, LARK_APP_ID, ...
	viper.SetEnvPrefix("LARK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	if shutdownTracer != nil {
		_ = shutdownTracer(context.Background())
	}

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
