package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/estate/internal/analyzer"
	"github.com/jackzampolin/estate/internal/api"
	"github.com/jackzampolin/estate/internal/config"
	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/providers"
)

var (
	analyzeLocal    bool
	analyzeProvider string
	analyzeReport   bool
)

// analyzeOutput is printed when --report is set.
type analyzeOutput struct {
	Info   estate.Info     `json:"info" yaml:"info"`
	Report analyzer.Report `json:"report" yaml:"report"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf>",
	Short: "Analyze an estate planning PDF",
	Long: `Analyze a PDF in-process, without a running server.

The result is the six-field record: clientName, clientAddress, documentDate,
title, summary and n_pages.

Examples:
  estate analyze ./will.pdf
  estate analyze --report -o yaml ./trust.pdf
  estate analyze --local ./scan.pdf       # prefer the configured local model`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		current := *mgr.Get()
		cfg := &current
		if analyzeProvider != "" {
			if _, ok := cfg.GetLLMProvider(analyzeProvider); !ok {
				return fmt.Errorf("unknown provider %q", analyzeProvider)
			}
			cfg.Defaults.LLMProvider = analyzeProvider
		}

		logger := slog.Default()
		registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig(), logger)

		svc := analyzer.NewService(registry, func() *config.Config { return cfg }, logger)
		info, report, err := svc.Analyze(cmd.Context(), args[0], analyzeLocal)
		if err != nil {
			return err
		}

		if analyzeReport {
			return api.Output(analyzeOutput{Info: info, Report: report})
		}
		return api.Output(info)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeLocal, "local", false, "Prefer the configured local model")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider to use (default: defaults.llm_provider)")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "Include how the result was produced")

	rootCmd.AddCommand(analyzeCmd)
}
