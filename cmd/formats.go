package cmd

import (
	"fmt"
	"os"

	"github.com/ahmadoasif/YT-Downloader/internal/config"
	"github.com/ahmadoasif/YT-Downloader/internal/extractor"
	"github.com/ahmadoasif/YT-Downloader/internal/format"
	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/ahmadoasif/YT-Downloader/internal/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newFormatsCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "formats [URL] [--kind video|audio]",
		Short: "List the downloadable formats of a URL without downloading",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signalContext()
			defer stop()

			kinds := []format.Kind{format.KindVideo, format.KindAudio}
			if kind != "" {
				k, err := format.ResolveKind(kind)
				if err != nil {
					output.PrintError(err.Error())
					os.Exit(1)
				}
				kinds = []format.Kind{k}
			}

			var ytdlpPath, proxy string
			if cfg, err := config.Load(configFile); err == nil {
				ytdlpPath, proxy = cfg.YtdlpPath, cfg.Proxy
			}
			info, err := extractor.NewClient(ytdlpPath, proxy).Probe(ctx, args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Could not list formats: %v", err))
				os.Exit(1)
			}
			log.Debug().Str("op", "cmd/formats").Msgf("Probed %s with %d formats", args[0], len(info.Formats))

			output.PrintHeader(info.Title)
			for _, k := range kinds {
				cands := format.ListCandidates(info.Formats, k)
				if len(cands) == 0 {
					output.PrintWarning(fmt.Sprintf("No %s formats available", k))
					continue
				}
				output.PrintInfo(fmt.Sprintf("%s formats:", k))
				prompt.RenderCandidates(os.Stdout, cands)
			}
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list video or audio formats")
	return cmd
}
