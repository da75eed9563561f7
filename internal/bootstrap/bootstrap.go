package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedOS = errors.New("unsupported operating system")

type Status int

const (
	StatusPresent Status = iota
	StatusInstalled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "already installed"
	case StatusInstalled:
		return "installed"
	}
	return "failed"
}

// Outcome reports what happened to one tool. PathHint is set when the
// operator has to add a directory to PATH themselves.
type Outcome struct {
	Tool     string
	Status   Status
	Path     string
	PathHint string
	Err      error
}

// Tool describes how to obtain one external program.
type Tool struct {
	Name          string
	Binary        string
	BrewPackage   string
	AptPackage    string
	WindowsURL    string
	WindowsBinary string
}

var (
	FFmpeg = Tool{
		Name:          "ffmpeg",
		Binary:        "ffmpeg",
		BrewPackage:   "ffmpeg",
		AptPackage:    "ffmpeg",
		WindowsURL:    "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip",
		WindowsBinary: "ffmpeg.exe",
	}
	Aria2 = Tool{
		Name:          "aria2",
		Binary:        utils.ExternalDownloader,
		BrewPackage:   "aria2",
		AptPackage:    "aria2",
		WindowsURL:    "https://github.com/aria2/aria2/releases/download/release-1.36.0/aria2-1.36.0-win-64bit-build1.zip",
		WindowsBinary: "aria2c.exe",
	}
)

// CommandRunner executes an installer command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

type Bootstrapper struct {
	GOOS         string
	Dir          string
	Tools        []Tool
	LookPath     func(file string) (string, error)
	RunCommand   CommandRunner
	HTTP         utils.HTTPDoer
	InstallYtdlp func(ctx context.Context) (string, error)
}

// New returns a Bootstrapper for the running OS. Archive downloads go through
// proxy when it is set.
func New(proxy string) *Bootstrapper {
	dir, err := os.Getwd()
	if err != nil {
		dir = utils.ExecutableDir()
	}
	return &Bootstrapper{
		GOOS:         runtime.GOOS,
		Dir:          dir,
		Tools:        []Tool{FFmpeg, Aria2},
		LookPath:     exec.LookPath,
		RunCommand:   runCommand,
		HTTP:         utils.NewHTTPClient(utils.HTTPClientConfig{ProxyURL: proxy}),
		InstallYtdlp: installYtdlp,
	}
}

// Run makes sure yt-dlp and every tool are available. A failure for one tool
// never stops the others.
func (b *Bootstrapper) Run(ctx context.Context) []Outcome {
	outcomes := []Outcome{b.ensureYtdlp(ctx)}
	for _, tool := range b.Tools {
		if ctx.Err() != nil {
			outcomes = append(outcomes, Outcome{Tool: tool.Name, Status: StatusFailed, Err: ctx.Err()})
			continue
		}
		outcomes = append(outcomes, b.ensureTool(ctx, tool))
	}
	return outcomes
}

func (b *Bootstrapper) ensureYtdlp(ctx context.Context) Outcome {
	out := Outcome{Tool: "yt-dlp"}
	path, err := b.InstallYtdlp(ctx)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("error installing yt-dlp: %w", err)
		return out
	}
	out.Status = StatusInstalled
	out.Path = path
	log.Debug().Str("op", "bootstrap/ytdlp").Msgf("yt-dlp available at %s", path)
	return out
}

func (b *Bootstrapper) ensureTool(ctx context.Context, tool Tool) Outcome {
	out := Outcome{Tool: tool.Name}
	if path, err := b.LookPath(tool.Binary); err == nil {
		out.Status = StatusPresent
		out.Path = path
		return out
	}
	log.Info().Str("op", "bootstrap/tool").Msgf("%s not found, installing", tool.Binary)

	if b.GOOS == "windows" {
		dir, err := b.installArchive(ctx, tool)
		if err != nil {
			out.Status = StatusFailed
			out.Err = err
			return out
		}
		out.Status = StatusInstalled
		out.Path = filepath.Join(dir, tool.WindowsBinary)
		out.PathHint = dir
		return out
	}

	args, err := InstallCommand(b.GOOS, tool)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	if err := b.RunCommand(ctx, args[0], args[1:]...); err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("error running %s: %w", args[0], err)
		return out
	}
	out.Status = StatusInstalled
	if path, err := b.LookPath(tool.Binary); err == nil {
		out.Path = path
	}
	return out
}

// InstallCommand is the package manager invocation for tool on goos.
func InstallCommand(goos string, tool Tool) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"brew", "install", tool.BrewPackage}, nil
	case "linux":
		return []string{"sudo", "apt", "install", "-y", tool.AptPackage}, nil
	}
	return nil, fmt.Errorf("%w for %s: %s", ErrUnsupportedOS, tool.Name, goos)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func installYtdlp(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}
