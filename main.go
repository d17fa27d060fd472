package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	sysdash "github.com/jondoveston/sysdash/internal"
	"github.com/jondoveston/sysdash/internal/agent"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sysdash [url]",
	Short: "Terminal dashboard for live system metrics",
	Long: `sysdash polls a system metrics endpoint every 2 seconds and shows CPU,
memory, disk, network and the busiest processes in an interactive terminal
interface.

Examples:
  sysdash http://server.lan:5000
  sysdash --source prometheus http://prometheus.lan:9090
  sysdash --source node_exporter http://localhost:9100/metrics
  SYSDASH_URL=http://server.lan:5000 sysdash
  sysdash serve --listen :5000`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runDashboard,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve this host's metrics on /api/system",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [url]",
	Short: "Fetch one snapshot and print it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

func init() {
	// Define flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.config/sysdash/sysdash.yaml)")
	rootCmd.PersistentFlags().String("url", "", "metrics backend URL")
	rootCmd.PersistentFlags().String("source", "auto", "backend type: auto, api, prometheus or node_exporter")
	rootCmd.PersistentFlags().String("instance", "", "node_exporter instance to show when the source is prometheus")
	rootCmd.PersistentFlags().Duration("timeout", sysdash.RequestTimeout(), "per-request timeout")
	rootCmd.Flags().Duration("interval", sysdash.UpdateDuration(), "refresh interval")
	rootCmd.Flags().Int("history", sysdash.MAX_DATA_POINTS, "CPU samples kept for the chart")
	rootCmd.Flags().String("log-file", "sysdash.log", "log file used while the terminal UI runs")
	rootCmd.Flags().Bool("headless", false, "print plain text updates instead of the terminal UI")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	serveCmd.Flags().String("listen", ":5000", "address to listen on")
	serveCmd.Flags().String("disk-path", agent.DefaultDiskPath(), "filesystem reported as disk")
	serveCmd.Flags().Int("top-processes", 10, "number of processes reported")
	serveCmd.Flags().Duration("interval", sysdash.UpdateDuration(), "websocket push interval")

	snapshotCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")

	// Bind flags to Viper keys (note: dashes in flags become underscores in viper)
	for key, flag := range map[string]string{
		"url":      "url",
		"source":   "source",
		"instance": "instance",
		"timeout":  "timeout",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
	viper.BindPFlag("interval", rootCmd.Flags().Lookup("interval"))
	viper.BindPFlag("history", rootCmd.Flags().Lookup("history"))
	viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))
	viper.BindPFlag("headless", rootCmd.Flags().Lookup("headless"))
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("disk_path", serveCmd.Flags().Lookup("disk-path"))
	viper.BindPFlag("top_processes", serveCmd.Flags().Lookup("top-processes"))
	viper.BindPFlag("serve_interval", serveCmd.Flags().Lookup("interval"))
	viper.BindPFlag("output", snapshotCmd.Flags().Lookup("output"))

	// Configure Viper for environment variables
	viper.SetEnvPrefix("sysdash")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("url", "http://localhost:5000")

	rootCmd.AddCommand(serveCmd, snapshotCmd)
}

// loadConfig reads the optional config file; flags and env still win
func loadConfig(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("sysdash")
		viper.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/sysdash")
		}
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	// Handle positional argument (only if url not already set by env var or flag)
	if len(args) == 1 && !cmd.Flags().Changed("url") && os.Getenv("SYSDASH_URL") == "" {
		viper.Set("url", args[0])
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func detectSource(ctx context.Context) (sysdash.DetectedSource, error) {
	raw := viper.GetString("url")
	if raw == "" {
		return sysdash.DetectedSource{}, fmt.Errorf("url must be set")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return sysdash.DetectedSource{}, fmt.Errorf("parsing url %q: %w", raw, err)
	}

	src, err := sysdash.NewSource(ctx, viper.GetString("source"), base, viper.GetDuration("timeout"))
	if err != nil {
		return sysdash.DetectedSource{}, err
	}
	if pd, ok := src.Data.(*sysdash.PrometheusData); ok && viper.GetString("instance") != "" {
		pd.SetInstance(viper.GetString("instance"))
	}
	log.Printf("Using %s backend: %s", src.Data.GetType(), src.Name)
	return src, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// Handle --version flag first
	versionFlag, _ := cmd.Flags().GetBool("version")
	if versionFlag {
		fmt.Printf("sysdash version %s\n", version)
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	headless := viper.GetBool("headless")

	// Set up logging; the terminal UI owns stderr
	if headless {
		log.SetOutput(os.Stderr)
	} else {
		f, err := tea.LogToFile(viper.GetString("log_file"), "sysdash")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}
	log.Printf("Starting sysdash %s", version)

	src, err := detectSource(ctx)
	if err != nil {
		return err
	}

	interval := viper.GetDuration("interval")
	history := viper.GetInt("history")
	if headless {
		return sysdash.Headless(ctx, src, interval, history, os.Stdout)
	}
	return sysdash.Dashboard(ctx, src, interval, history)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	log.SetOutput(os.Stderr)
	log.Printf("Starting sysdash agent %s", version)

	collector := agent.NewHostCollector(
		viper.GetString("disk_path"),
		viper.GetInt("top_processes"),
		0,
	)
	server := agent.NewServer(collector, agent.NewMetrics(), viper.GetDuration("serve_interval"))
	return agent.Serve(ctx, viper.GetString("listen"), server)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	log.SetOutput(os.Stderr)

	src, err := detectSource(ctx)
	if err != nil {
		return err
	}
	snap, err := sysdash.FetchOnce(ctx, src.Data)
	if err != nil {
		return err
	}

	switch output := viper.GetString("output"); output {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(snap)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
