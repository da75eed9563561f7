package media

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// Streams reports which kinds of streams a media file carries.
type Streams struct {
	HasAudio bool
	HasVideo bool
	Duration string
}

type probeOutput struct {
	Streams []struct {
		CodecType   string `json:"codec_type"`
		Disposition struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober runs ffprobe on a file and returns its JSON report.
type Prober func(path string) (string, error)

func ffprobe(path string) (string, error) {
	return ffmpeg_go.Probe(path)
}

// Inspect runs ffprobe on path.
func Inspect(path string) (Streams, error) {
	return InspectWith(ffprobe, path)
}

func InspectWith(probe Prober, path string) (Streams, error) {
	raw, err := probe(path)
	if err != nil {
		return Streams{}, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	streams, err := ParseProbe(raw)
	if err != nil {
		return Streams{}, fmt.Errorf("ffprobe output for %s: %w", path, err)
	}
	log.Debug().Str("op", "media/inspect").Msgf("%s: audio=%t video=%t", path, streams.HasAudio, streams.HasVideo)
	return streams, nil
}

// ParseProbe reads ffprobe's JSON. Cover art is not counted as video.
func ParseProbe(raw string) (Streams, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Streams{}, fmt.Errorf("error decoding ffprobe output: %w", err)
	}
	s := Streams{Duration: out.Format.Duration}
	for _, st := range out.Streams {
		switch st.CodecType {
		case "audio":
			s.HasAudio = true
		case "video":
			if st.Disposition.AttachedPic == 0 {
				s.HasVideo = true
			}
		}
	}
	return s, nil
}
