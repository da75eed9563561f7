package extractor

import (
	"context"
	"fmt"
)

// Extractor is the external media tool as seen by the rest of the program.
type Extractor interface {
	// Probe fetches metadata only; it never downloads media.
	Probe(ctx context.Context, url string) (*Info, error)
	Download(ctx context.Context, url string, opts Options) ([]Info, error)
}

// Options is the backend-neutral description of one download.
type Options struct {
	Format                 string
	OutputTemplate         string
	MergeFormat            string
	Playlist               bool
	Retries                int
	ExternalDownloader     string
	ExternalDownloaderArgs string
}

// Format is one entry of the probed format list.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	VideoExt       string  `json:"video_ext"`
	Height         float64 `json:"height"`
	ABR            float64 `json:"abr"`
	TBR            float64 `json:"tbr"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
	FormatNote     string  `json:"format_note"`
}

func (f Format) Size() int64 {
	if f.Filesize > 0 {
		return int64(f.Filesize)
	}
	return int64(f.FilesizeApprox)
}

type RequestedDownload struct {
	Filepath string `json:"filepath"`
	Filename string `json:"filename"`
}

// Info is the metadata yt-dlp reports for a video, or for a playlist when
// Type is "playlist".
type Info struct {
	Type               string              `json:"_type"`
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Resolution         string              `json:"resolution"`
	Height             float64             `json:"height"`
	FormatID           string              `json:"format_id"`
	Format             string              `json:"format"`
	Ext                string              `json:"ext"`
	VCodec             string              `json:"vcodec"`
	ACodec             string              `json:"acodec"`
	Filename           string              `json:"filename"`
	LegacyFilename     string              `json:"_filename"`
	RequestedDownloads []RequestedDownload `json:"requested_downloads"`
	Formats            []Format            `json:"formats"`
	Entries            []Info              `json:"entries"`
}

func (i Info) ResolutionLabel() string {
	if i.Resolution != "" && i.Resolution != "audio only" {
		return i.Resolution
	}
	if i.Height > 0 {
		return fmt.Sprintf("%dp", int(i.Height))
	}
	if i.Resolution != "" {
		return i.Resolution
	}
	return "Unknown"
}

func (i Info) FormatLabel() string {
	if i.FormatID != "" {
		return i.FormatID
	}
	if i.Format != "" {
		return i.Format
	}
	return "Unknown"
}

func (i Info) HasAudio() bool {
	return i.ACodec != "" && i.ACodec != "none"
}

func (i Info) HasVideo() bool {
	return i.VCodec != "" && i.VCodec != "none"
}

// OutputPath is the final file yt-dlp reported for this entry, if any.
func (i Info) OutputPath() string {
	for _, rd := range i.RequestedDownloads {
		if rd.Filepath != "" {
			return rd.Filepath
		}
	}
	if i.Filename != "" {
		return i.Filename
	}
	return i.LegacyFilename
}
