package cmd

import (
	"fmt"
	"os"

	"github.com/ahmadoasif/YT-Downloader/internal/bootstrap"
	"github.com/ahmadoasif/YT-Downloader/internal/config"
	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install yt-dlp, ffmpeg and aria2",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signalContext()
			defer stop()

			proxy := ""
			if cfg, err := config.Load(configFile); err == nil {
				proxy = cfg.Proxy
			}
			output.PrintHeader("Setting up dependencies")
			outcomes := bootstrap.New(proxy).Run(ctx)
			failed := 0
			for _, o := range outcomes {
				switch o.Status {
				case bootstrap.StatusFailed:
					failed++
					output.PrintError(fmt.Sprintf("%s: %v", o.Tool, o.Err))
				default:
					output.PrintSuccess(fmt.Sprintf("%s %s %s", o.Tool, o.Status, output.FDetail(o.Path)))
				}
				if o.PathHint != "" {
					output.PrintWarning(fmt.Sprintf("Add %s to PATH (you may need to restart the terminal)", o.PathHint))
				}
			}
			log.Debug().Str("op", "cmd/setup").Msgf("%d of %d tools failed", failed, len(outcomes))
			if failed > 0 {
				output.PrintError("Some dependencies could not be installed")
				os.Exit(1)
			}
			output.PrintSuccess("All dependencies installed")
		},
	}
	return cmd
}
