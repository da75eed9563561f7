package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmadoasif/YT-Downloader/internal/format"
	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrConfigMissing   = errors.New("config file not found")
	ErrConfigMalformed = errors.New("config file is malformed")
)

// Keys recognised in the settings file.
const (
	KeyPreferredQuality      = "preferred_quality"
	KeyPlaylistMode          = "playlist_mode"
	KeyUseExternalDownloader = "use_external_downloader"
	KeyOutputDir             = "output_dir"
	KeyContainer             = "container"
	KeyRetries               = "retries"
	KeyInteractive           = "interactive"
	KeyLogFile               = "log_file"
	KeyLogFailures           = "log_failures"
	KeyWorkers               = "workers"
	KeyVerifyOutput          = "verify_output"
	KeyPromptTimeout         = "prompt_timeout"
	KeyYtdlpPath             = "ytdlp_path"
	KeyProxy                 = "proxy"
)

const (
	DefaultQuality   = "1080p"
	DefaultContainer = "mp4"
	DefaultRetries   = 10
	DefaultWorkers   = 1
	maxWorkers       = 8
)

// Config is built once at startup and passed by value afterwards.
type Config struct {
	PreferredQuality      int
	PlaylistMode          bool
	UseExternalDownloader bool
	OutputDir             string
	Container             string
	Retries               int
	Interactive           bool
	LogFile               string
	LogFailures           bool
	Workers               int
	VerifyOutput          bool
	PromptTimeout         time.Duration
	YtdlpPath             string
	Proxy                 string
}

type fileSettings struct {
	PreferredQuality      string `mapstructure:"preferred_quality"`
	PlaylistMode          bool   `mapstructure:"playlist_mode"`
	UseExternalDownloader bool   `mapstructure:"use_external_downloader"`
	OutputDir             string `mapstructure:"output_dir"`
	Container             string `mapstructure:"container"`
	Retries               int    `mapstructure:"retries"`
	Interactive           bool   `mapstructure:"interactive"`
	LogFile               string `mapstructure:"log_file"`
	LogFailures           bool   `mapstructure:"log_failures"`
	Workers               int    `mapstructure:"workers"`
	VerifyOutput          bool   `mapstructure:"verify_output"`
	PromptTimeout         string `mapstructure:"prompt_timeout"`
	YtdlpPath             string `mapstructure:"ytdlp_path"`
	Proxy                 string `mapstructure:"proxy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPreferredQuality, DefaultQuality)
	v.SetDefault(KeyPlaylistMode, false)
	v.SetDefault(KeyUseExternalDownloader, false)
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyContainer, DefaultContainer)
	v.SetDefault(KeyRetries, DefaultRetries)
	v.SetDefault(KeyInteractive, false)
	v.SetDefault(KeyLogFile, filepath.Join(utils.ExecutableDir(), utils.DefaultLogName))
	v.SetDefault(KeyLogFailures, false)
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyVerifyOutput, false)
	v.SetDefault(KeyPromptTimeout, "0s")
	v.SetDefault(KeyYtdlpPath, "")
	v.SetDefault(KeyProxy, "")
}

// Load reads the JSON settings file at path and applies defaults for every
// key the file leaves out.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return Config{}, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	if info.IsDir() {
		return Config{}, fmt.Errorf("%w: %s is a directory", ErrConfigMalformed, path)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	var raw fileSettings
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, err
	}
	log.Debug().Str("op", "config/load").Str("file", path).Int("quality", cfg.PreferredQuality).
		Bool("playlist", cfg.PlaylistMode).Bool("external", cfg.UseExternalDownloader).Msg("Configuration loaded")
	return cfg, nil
}

// Default returns the configuration used when every key is left at its
// default value.
func Default() (Config, error) {
	v := viper.New()
	setDefaults(v)
	var raw fileSettings
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	return raw.resolve()
}

func (s fileSettings) resolve() (Config, error) {
	quality, err := format.ParseQuality(s.PreferredQuality)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfigMalformed, KeyPreferredQuality, err)
	}
	container := strings.ToLower(strings.TrimSpace(s.Container))
	if container == "" {
		container = DefaultContainer
	}
	if !format.IsMergeFormat(container) {
		return Config{}, fmt.Errorf("%w: %s: %q is not one of %s", ErrConfigMalformed, KeyContainer, s.Container, strings.Join(format.MergeFormats, ", "))
	}
	proxy := strings.TrimSpace(s.Proxy)
	if proxy != "" {
		if u, err := url.Parse(proxy); err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, fmt.Errorf("%w: %s: invalid proxy URL %q", ErrConfigMalformed, KeyProxy, s.Proxy)
		}
	}
	if s.Retries < 0 {
		return Config{}, fmt.Errorf("%w: %s must not be negative", ErrConfigMalformed, KeyRetries)
	}
	workers := s.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	workers = min(workers, maxWorkers)
	var timeout time.Duration
	if strings.TrimSpace(s.PromptTimeout) != "" {
		timeout, err = time.ParseDuration(strings.TrimSpace(s.PromptTimeout))
		if err != nil || timeout < 0 {
			return Config{}, fmt.Errorf("%w: %s: invalid duration %q", ErrConfigMalformed, KeyPromptTimeout, s.PromptTimeout)
		}
	}
	return Config{
		PreferredQuality:      quality,
		PlaylistMode:          s.PlaylistMode,
		UseExternalDownloader: s.UseExternalDownloader,
		OutputDir:             utils.FirstNonEmpty(s.OutputDir, "."),
		Container:             container,
		Retries:               s.Retries,
		Interactive:           s.Interactive,
		LogFile:               utils.FirstNonEmpty(s.LogFile, filepath.Join(utils.ExecutableDir(), utils.DefaultLogName)),
		LogFailures:           s.LogFailures,
		Workers:               workers,
		VerifyOutput:          s.VerifyOutput,
		PromptTimeout:         timeout,
		YtdlpPath:             s.YtdlpPath,
		Proxy:                 proxy,
	}, nil
}
