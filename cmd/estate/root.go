package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/estate/internal/api"
	"github.com/jackzampolin/estate/internal/config"
	"github.com/jackzampolin/estate/internal/home"
	"github.com/jackzampolin/estate/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logFormat    string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "estate",
	Short: "Extract client details and summaries from estate planning PDFs",
	Long: `Estate reads estate planning documents (wills, trusts, powers of attorney)
and extracts the client's name and address, the document date, its title,
a short summary and the page count.

Documents with a text layer are sent to the model as text. Scanned documents
are uploaded to the model as files.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.estate/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "estate home directory (default: ~/.estate)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or yaml",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "text", "log format: text or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := api.SetOutputFormat(outputFormat); err != nil {
			return err
		}
		logger, err := newLogger(logFormat, logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		loadEnvFiles()
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// parseable for -o json.
func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}

// loadEnvFiles loads ./.env and then the home .env. Variables already set
// in the environment win.
func loadEnvFiles() {
	files := []string{".env"}
	if h, err := home.New(homeDir); err == nil {
		files = append(files, h.EnvPath())
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "path", f, "error", err)
		}
	}
}

// loadConfig opens the config manager, preferring --config, then the
// home directory's config.yaml, then the default search paths.
func loadConfig() (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, nil, err
	}
	return mgr, h, nil
}
