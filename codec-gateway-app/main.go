package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/compose-network/bodycodec/codec-gateway-app/config"
	"github.com/compose-network/bodycodec/log"
)

const banner = `
 ██████╗ ██████╗ ██████╗ ███████╗ ██████╗
██╔════╝██╔═══██╗██╔══██╗██╔════╝██╔════╝
██║     ██║   ██║██║  ██║█████╗  ██║
██║     ██║   ██║██║  ██║██╔══╝  ██║
╚██████╗╚██████╔╝██████╔╝███████╗╚██████╗
 ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝ ╚═════╝`

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	return newRootCmd().Execute()
}

// newRootCmd builds the command tree. The root command serves the gateway.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codec-gateway",
		Short:         "Message body codec gateway",
		Long:          banner + "\n\nEncodes and decodes message bodies with pluggable, content-type keyed codecs.",
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd, newCodecsCmd(), newEncodeCmd(), newDecodeCmd())

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file path (defaults and env only when empty)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")

	// Codec flags
	rootCmd.PersistentFlags().String("default-codec", "", "default codec name (bson, json, gzip-json, ...)")
	rootCmd.PersistentFlags().Int("gzip-level", 0, "gzip compression level (-2..9)")
	rootCmd.PersistentFlags().Bool("protobuf", false, "enable the protobuf codec")
	rootCmd.PersistentFlags().Bool("trace", false, "log every codec event at debug level")

	// Server flags
	rootCmd.Flags().String("listen-addr", "", "HTTP listen address")
	rootCmd.Flags().Bool("cors", false, "enable permissive CORS")

	// Metrics flags
	rootCmd.Flags().Bool("metrics", false, "enable metrics")
	rootCmd.Flags().String("metrics-path", "", "metrics endpoint path")

	return rootCmd
}

// loadConfig loads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	fmt.Println(banner)
	fmt.Println()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := log.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("go_version", runtime.Version()).
		Msg("Build information")

	log.Info().
		Str("config_file", cmd.Flag("config").Value.String()).
		Str("listen_addr", cfg.API.ListenAddr).
		Str("default_codec", cfg.Codec.Default).
		Bool("protobuf_enabled", cfg.Codec.EnableProtobuf).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Str("log_level", cfg.Log.Level).
		Msg("Configuration loaded")

	application, err := NewApp(cmd.Context(), cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run(cmd.Context())
}

func runVersion(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Codec Gateway\n")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(w, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if changed("log-pretty") {
		cfg.Log.Pretty, _ = flags.GetBool("log-pretty")
	}

	if changed("default-codec") {
		cfg.Codec.Default, _ = flags.GetString("default-codec")
	}
	if changed("gzip-level") {
		cfg.Codec.GzipLevel, _ = flags.GetInt("gzip-level")
	}
	if changed("protobuf") {
		cfg.Codec.EnableProtobuf, _ = flags.GetBool("protobuf")
	}
	if changed("trace") {
		cfg.Codec.Trace, _ = flags.GetBool("trace")
	}

	if changed("listen-addr") {
		cfg.API.ListenAddr, _ = flags.GetString("listen-addr")
	}
	if changed("cors") {
		cfg.API.EnableCORS, _ = flags.GetBool("cors")
	}

	if changed("metrics") {
		cfg.Metrics.Enabled, _ = flags.GetBool("metrics")
	}
	if changed("metrics-path") {
		cfg.Metrics.Path, _ = flags.GetString("metrics-path")
	}
}
