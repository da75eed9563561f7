package extractor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
)

var (
	ErrProbeFailed  = errors.New("format probe failed")
	ErrExternalTool = errors.New("yt-dlp failed")
)

// Client drives yt-dlp through go-ytdlp.
type Client struct {
	// Executable overrides go-ytdlp's own resolution of the yt-dlp binary.
	Executable string
	Proxy      string
}

func NewClient(executable, proxy string) *Client {
	return &Client{Executable: executable, Proxy: proxy}
}

func (c *Client) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if c.Executable != "" {
		cmd = cmd.SetExecutable(c.Executable)
	}
	if c.Proxy != "" {
		cmd = cmd.Proxy(c.Proxy)
	}
	return cmd
}

func (c *Client) Probe(ctx context.Context, url string) (*Info, error) {
	cmd := c.command().
		DumpJSON().
		SkipDownload().
		NoPlaylist().
		NoWarnings()
	result, err := cmd.Run(ctx, url)
	logCommand("extractor/probe", result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrProbeFailed, err, stderrTail(result))
	}
	infos, err := DecodeInfos(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no metadata returned for %s", ErrProbeFailed, url)
	}
	log.Debug().Str("op", "extractor/probe").Msgf("Probed %d formats for %s", len(infos[0].Formats), url)
	return &infos[0], nil
}

func (c *Client) Download(ctx context.Context, url string, opts Options) ([]Info, error) {
	cmd := c.build(opts)
	result, err := cmd.Run(ctx, url)
	logCommand("extractor/download", result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrExternalTool, err, stderrTail(result))
	}
	infos, err := DecodeInfos(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalTool, err)
	}
	log.Info().Str("op", "extractor/download").Msgf("yt-dlp download completed for %s", url)
	return infos, nil
}

// build translates Options into yt-dlp flags.
func (c *Client) build(opts Options) *ytdlp.Command {
	cmd := c.command().
		PrintJSON().
		NoWarnings().
		Output(opts.OutputTemplate)
	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.MergeFormat != "" {
		cmd = cmd.MergeOutputFormat(opts.MergeFormat)
	}
	if opts.Playlist {
		cmd = cmd.YesPlaylist()
	} else {
		cmd = cmd.NoPlaylist()
	}
	if opts.Retries > 0 {
		cmd = cmd.Retries(strconv.Itoa(opts.Retries)).FragmentRetries(strconv.Itoa(opts.Retries))
	}
	if opts.ExternalDownloader != "" {
		cmd = cmd.Downloader(opts.ExternalDownloader)
		if opts.ExternalDownloaderArgs != "" {
			cmd = cmd.DownloaderArgs(opts.ExternalDownloader + ":" + opts.ExternalDownloaderArgs)
		}
	}
	return cmd
}

// DecodeInfos reads the JSON objects yt-dlp prints, one per line. Playlist
// objects are flattened into their entries.
func DecodeInfos(stdout string) ([]Info, error) {
	var infos []Info
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info Info
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("error decoding yt-dlp output: %w", err)
		}
		infos = append(infos, flatten(info)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading yt-dlp output: %w", err)
	}
	return infos, nil
}

func flatten(info Info) []Info {
	if info.Type != "playlist" && len(info.Entries) == 0 {
		return []Info{info}
	}
	var out []Info
	for _, entry := range info.Entries {
		out = append(out, flatten(entry)...)
	}
	return out
}

func logCommand(op string, result *ytdlp.Result) {
	if result == nil {
		return
	}
	log.Debug().Str("op", op).Msgf("Executed yt-dlp command: %s", shellescape.QuoteCommand(append([]string{result.Executable}, result.Args...)))
}

func stderrTail(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(result.Stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return ": " + line
		}
	}
	return ""
}
