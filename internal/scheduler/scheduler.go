package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/ahmadoasif/YT-Downloader/internal/config"
	"github.com/ahmadoasif/YT-Downloader/internal/extractor"
	"github.com/ahmadoasif/YT-Downloader/internal/format"
	"github.com/ahmadoasif/YT-Downloader/internal/media"
	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/rs/zerolog/log"
)

var errDestination = errors.New("destination directory unavailable")

// Runner downloads a batch of URLs with one configuration.
type Runner struct {
	Config    config.Config
	Extractor extractor.Extractor
	Prompter  Prompter

	// LookPath locates the external downloader; checked on every URL.
	LookPath func(file string) (string, error)
	Inspect  func(path string) (media.Streams, error)
	// OnResult receives results strictly in input order.
	OnResult func(Result)
}

func NewRunner(cfg config.Config, ex extractor.Extractor, p Prompter) *Runner {
	return &Runner{
		Config:    cfg,
		Extractor: ex,
		Prompter:  p,
		LookPath:  exec.LookPath,
		Inspect:   media.Inspect,
	}
}

// Run processes every URL and returns one Result per URL in input order.
// Per-URL errors never stop the batch; a cancelled context does.
func (r *Runner) Run(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	workers := r.Config.Workers
	if r.Config.Interactive || workers < 1 {
		workers = 1
	}
	workers = min(workers, max(len(urls), 1))
	log.Debug().Str("op", "scheduler/run").Msgf("Running %d URLs with %d worker(s)", len(urls), workers)

	if workers == 1 {
		for i, url := range urls {
			output.PrintPending(fmt.Sprintf("Downloading: %s", url))
			results[i] = r.processJob(ctx, i, url)
			r.emit(results[i])
		}
		return results
	}

	jobCh := make(chan int, len(urls))
	for i := range urls {
		jobCh <- i
	}
	close(jobCh)

	doneCh := make(chan int, len(urls))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				results[i] = r.processJob(ctx, i, urls[i])
				doneCh <- i
			}
		}()
	}
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	// flush in submission order regardless of completion order
	ready := make([]bool, len(urls))
	next := 0
	for i := range doneCh {
		ready[i] = true
		for next < len(urls) && ready[next] {
			r.emit(results[next])
			next++
		}
	}
	return results
}

func (r *Runner) emit(res Result) {
	if r.OnResult != nil {
		r.OnResult(res)
	}
}

func (r *Runner) processJob(ctx context.Context, index int, url string) Result {
	res := Result{Index: index, URL: url}
	if err := ctx.Err(); err != nil {
		res.Failure = FailureCancelled
		res.Err = fmt.Errorf("not started: %w", err)
		return res
	}

	var opts extractor.Options
	var err error
	if r.Config.Interactive {
		opts, err = r.interactiveOptions(ctx, url)
	} else {
		opts, err = r.autoOptions()
	}
	if err == nil {
		var infos []extractor.Info
		infos, err = r.Extractor.Download(ctx, url, opts)
		if err == nil {
			res.Entries = r.collect(infos)
		}
	}
	if err != nil {
		res.Failure = classify(ctx, err)
		res.Err = err
		log.Debug().Str("op", "scheduler/process").Msgf("%s failed (%s): %v", url, res.Failure, err)
		return res
	}
	if len(res.Entries) > 0 {
		res.Media = res.Entries[0]
	}
	res.Succeeded = true
	return res
}

func (r *Runner) autoOptions() (extractor.Options, error) {
	dir, err := r.destination(r.Config.OutputDir, utils.VideoDirName)
	if err != nil {
		return extractor.Options{}, err
	}
	chain := format.BuildFallbackChainFor(r.Config.PreferredQuality, r.Config.Container)
	opts := extractor.Options{
		Format:         chain.String(),
		OutputTemplate: filepath.Join(dir, utils.TitleTemplate),
		MergeFormat:    r.Config.Container,
		Playlist:       r.Config.PlaylistMode,
		Retries:        r.Config.Retries,
	}
	r.applyExternalDownloader(&opts)
	return opts, nil
}

func (r *Runner) interactiveOptions(ctx context.Context, url string) (extractor.Options, error) {
	if r.Prompter == nil {
		return extractor.Options{}, fmt.Errorf("%w: interactive mode without an operator prompt", format.ErrInvalidChoice)
	}
	info, err := r.Extractor.Probe(ctx, url)
	if err != nil {
		return extractor.Options{}, err
	}
	kind, err := r.Prompter.AskKind(ctx)
	if err != nil {
		return extractor.Options{}, err
	}
	cands := format.ListCandidates(info.Formats, kind)
	if len(cands) == 0 {
		return extractor.Options{}, fmt.Errorf("%w: no %s formats for %s", format.ErrNoCandidates, kind, url)
	}
	id, err := r.Prompter.ChooseFormat(ctx, cands)
	if err != nil {
		return extractor.Options{}, err
	}
	root, err := r.Prompter.AskDestination(ctx, r.Config.OutputDir)
	if err != nil {
		return extractor.Options{}, err
	}

	subdir, merge := utils.VideoDirName, r.Config.Container
	if kind == format.KindAudio {
		subdir, merge = utils.AudioDirName, ""
	}
	dir, err := r.destination(root, subdir)
	if err != nil {
		return extractor.Options{}, err
	}
	spec := id
	for _, c := range cands {
		if c.ID == id {
			spec = format.SpecForCandidate(c, r.Config.Container)
			break
		}
	}
	opts := extractor.Options{
		Format:         spec,
		OutputTemplate: filepath.Join(dir, utils.TitleTemplate),
		MergeFormat:    merge,
		Retries:        r.Config.Retries,
	}
	r.applyExternalDownloader(&opts)
	return opts, nil
}

func (r *Runner) destination(root, subdir string) (string, error) {
	dir := filepath.Join(root, subdir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("%w: %v", errDestination, err)
	}
	return dir, nil
}

// applyExternalDownloader adds aria2c only when it is configured and present.
func (r *Runner) applyExternalDownloader(opts *extractor.Options) {
	if !r.Config.UseExternalDownloader {
		return
	}
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(utils.ExternalDownloader); err != nil {
		log.Warn().Str("op", "scheduler/options").Msgf("%s not found, using the built-in downloader", utils.ExternalDownloader)
		return
	}
	opts.ExternalDownloader = utils.ExternalDownloader
	opts.ExternalDownloaderArgs = utils.ExternalDownloaderArgs
}

func (r *Runner) collect(infos []extractor.Info) []Media {
	entries := make([]Media, 0, len(infos))
	for _, info := range infos {
		m := Media{
			Title:      info.Title,
			Resolution: info.ResolutionLabel(),
			FormatID:   info.FormatLabel(),
			HasAudio:   info.HasAudio(),
			HasVideo:   info.HasVideo(),
			Filename:   info.OutputPath(),
		}
		if r.Config.VerifyOutput && m.Filename != "" && r.Inspect != nil {
			streams, err := r.Inspect(m.Filename)
			if err != nil {
				log.Warn().Str("op", "scheduler/verify").Msgf("Could not verify %s: %v", m.Filename, err)
			} else {
				m.HasAudio, m.HasVideo = streams.HasAudio, streams.HasVideo
			}
		}
		entries = append(entries, m)
	}
	return entries
}
