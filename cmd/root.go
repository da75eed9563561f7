package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmadoasif/YT-Downloader/internal/config"
	"github.com/ahmadoasif/YT-Downloader/internal/extractor"
	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/ahmadoasif/YT-Downloader/internal/prompt"
	"github.com/ahmadoasif/YT-Downloader/internal/report"
	"github.com/ahmadoasif/YT-Downloader/internal/scheduler"
	"github.com/ahmadoasif/YT-Downloader/internal/urllist"
	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	urlListFile string
	interactive bool
	outputDir   string
	workers     int
	debug       bool
)

var ToolVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "yt-downloader [--config FILE] [--list FILE]",
	Short:   "Batch video and audio downloader driven by yt-dlp",
	Version: ToolVersion,
	Args:    cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		runID := utils.InitLogger(debug)
		log.Debug().Str("op", "cmd/root").Msgf("Starting %s (run %s)", cmd.Name(), runID)
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			fatal(err)
		}
		p := prompt.New(os.Stdin, os.Stdout, cfg.PromptTimeout)
		canAsk := cfg.Interactive && !cmd.Flags().Changed("list") && output.IsInteractive()
		urls, err := readURLList(ctx, urlListFile, canAsk, p)
		if err != nil {
			fatal(err)
		}

		runner := scheduler.NewRunner(cfg, extractor.NewClient(cfg.YtdlpPath, cfg.Proxy), p)
		rep := report.NewReporter(cfg.LogFile, cfg.LogFailures, os.Stdout)
		runner.OnResult = rep.Handle

		output.PrintHeader(fmt.Sprintf("Starting download of %d URL(s)", len(urls)))
		log.Debug().Str("op", "cmd/root").Msgf("Scheduling %d URLs, interactive=%t, workers=%d", len(urls), cfg.Interactive, cfg.Workers)
		runner.Run(ctx, urls)
		rep.Finish()
		if ctx.Err() != nil {
			output.PrintWarning("Interrupted, remaining URLs were skipped")
			return
		}
		output.PrintSuccess("All downloads finished")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", utils.DefaultConfigFile, "Path to the JSON settings file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&urlListFile, "list", "l", utils.DefaultURLList, "Text file with one URL per line (or a YAML list of link entries)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose kind and format for each URL")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination root for Videos/ and Audios/")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of URLs to download in parallel (auto mode only)")

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newFormatsCmd())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads the settings file and lets explicit flags override it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("interactive") {
		cfg.Interactive = interactive
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("workers") && workers > 0 {
		cfg.Workers = workers
	}
	return cfg, nil
}

// pathAsker is the part of the operator prompt readURLList needs.
type pathAsker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// readURLList falls back to asking for another path when the list is missing
// and canAsk is set. Any other list error is returned as is.
func readURLList(ctx context.Context, path string, canAsk bool, asker pathAsker) ([]string, error) {
	urls, err := urllist.Read(path)
	if err == nil || !errors.Is(err, urllist.ErrListMissing) || !canAsk {
		return urls, err
	}
	output.PrintWarning(fmt.Sprintf("%s not found", path))
	answer, askErr := asker.Ask(ctx, "Path to URL list file: ")
	if askErr != nil || answer == "" {
		return nil, err
	}
	return urllist.Read(answer)
}

func fatal(err error) {
	switch {
	case errors.Is(err, config.ErrConfigMissing):
		output.PrintError(fmt.Sprintf("Config file not found: %v", err))
	case errors.Is(err, config.ErrConfigMalformed):
		output.PrintError(fmt.Sprintf("Config file is invalid: %v", err))
	case errors.Is(err, urllist.ErrListMissing):
		output.PrintError(fmt.Sprintf("URL list not found: %v", err))
	case errors.Is(err, urllist.ErrListEmpty):
		output.PrintError(fmt.Sprintf("URL list is empty: %v", err))
	default:
		output.PrintError(err.Error())
	}
	os.Exit(1)
}
