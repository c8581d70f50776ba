package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/clients"
	"github.com/mikeboe/paper-assistant/pkg/config"
	"github.com/mikeboe/paper-assistant/pkg/research"
)

var version = "dev"

var (
	configFile string
	v          *viper.Viper
	cfg        *config.Config
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(handler))

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paper-assistant",
		Short:         "Analyze, compare and search research papers",
		Long:          `paper-assistant reads research papers, asks a language model to analyze and compare them, and extracts citations and TF-IDF search results locally.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			v, err = config.New(configFile)
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			for key, flag := range map[string]string{"provider": "provider", "model": "model", "content_limit": "content-limit"} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("verbose") {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
			cfg, err = config.FromViper(v)
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML config file")
	pf.String("provider", "", "LLM provider: googleai, genai, anthropic or openai")
	pf.String("model", "", "Model name")
	pf.Int("content-limit", 0, "Characters of each paper sent for analysis")
	pf.BoolP("verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newSearchCmd(),
		newCitationsCmd(),
		newSummarizeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newAnalyzer(ctx context.Context) (*research.Analyzer, error) {
	llm, err := clients.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return research.NewAnalyzer(research.Config{
		ContentLimit:    cfg.ContentLimit,
		SummaryCacheTTL: cfg.SummaryCacheTTL,
	}, llm), nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		focus   []string
		format  string
		compare bool
		related bool
		export  string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze papers and optionally compare them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat, err := research.ParseOutputFormat(format)
			if err != nil {
				return err
			}

			papers, err := loadPapers(ctx, args)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			conv := &research.Conversation{}
			obs := research.Observer{
				OnProgress: func(f float64) { fmt.Fprintf(cmd.ErrOrStderr(), "progress: %3.0f%%\n", f*100) },
				OnFailure: func(d research.Document, err error) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: no analysis generated for %s: %v\n", d.Name, err)
				},
			}

			results := analyzer.AnalyzeAll(ctx, conv, papers, research.AnalysisRequest{FocusAreas: focus, OutputFormat: outputFormat}, obs)
			fmt.Fprint(out, research.Export(results))

			if export != "" {
				if export == "auto" {
					export = research.ExportFilename(time.Now())
				}
				if err := os.WriteFile(export, []byte(research.Export(results)), 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", export)
			}

			if compare {
				comparison, err := analyzer.Compare(ctx, conv, results)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "## Overview\n%s\n\n## Similarities\n%s\n\n## Differences\n%s\n\n## Future Research\n%s\n\n",
					comparison.Overview, comparison.Similarities, comparison.Differences, comparison.FutureResearch)
			}

			if related {
				suggestions, err := analyzer.FindRelated(ctx, conv, results)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "## Related Papers")
				for _, p := range suggestions {
					fmt.Fprintf(out, "- [%s](%s)\n", p.Title, p.URL)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&focus, "focus", research.DefaultFocusAreas, "Focus areas: "+strings.Join(research.FocusAreas, ", "))
	cmd.Flags().StringVar(&format, "format", string(research.FormatText), "Output format: Text, Bullet Points, Table or JSON")
	cmd.Flags().BoolVar(&compare, "compare", false, "Compare the analyzed papers")
	cmd.Flags().BoolVar(&related, "related", false, "Suggest related papers")
	cmd.Flags().StringVar(&export, "export", "", `Write the analyses to a file ("auto" picks a timestamped name)`)
	return cmd
}

func newSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search QUERY FILE...",
		Short: "Rank papers against a query with TF-IDF",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := loadPapers(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			if topK <= 0 {
				topK = cfg.SearchTopK
			}

			results, err := research.SearchPapers(papers, args[0], topK)
			if err != nil {
				return err
			}
			for i, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (score %.4f)\n", i+1, r.Name, r.Score)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of results (default from config)")
	return cmd
}

func newCitationsCmd() *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "citations FILE...",
		Short: "Extract parenthetical citations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if style == "" {
				style = cfg.DefaultCitationStyle
			}
			parsed, err := citation.ParseStyle(style)
			if err != nil {
				return err
			}

			papers, err := loadPapers(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, p := range research.CitationsByPaper(papers, parsed) {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", p.Name)
				for _, c := range p.Citations {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", c)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Citation style: APA, MLA or Chicago")
	return cmd
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize FILE...",
		Short: "Summarize each paper",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			papers, err := loadPapers(ctx, args)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(ctx)
			if err != nil {
				return err
			}

			for _, p := range papers {
				summary, err := analyzer.Summarize(ctx, p.Content)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not summarize %s: %v\n", p.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n\n", p.Name, summary)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *cfg
			shown.APIKey = redact(shown.APIKey)
			shown.MistralAPIKey = redact(shown.MistralAPIKey)

			out, err := yaml.Marshal(shown)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paper-assistant %s\n", version)
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
