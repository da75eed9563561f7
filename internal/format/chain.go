package format

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Tiers are the supported quality ceilings, highest first.
var Tiers = []int{1080, 720, 480, 360, 240, 144}

// Separator is yt-dlp's priority-fallback operator between format specs.
const Separator = "/"

const DefaultContainer = "mp4"

// MergeFormats are the containers yt-dlp can merge into.
var MergeFormats = []string{"avi", "flv", "mkv", "mov", "mp4", "webm"}

type sourceExts struct {
	video string
	audio string
}

// sourceFor maps a merge container to the stream extensions sites actually
// serve for it. Containers missing here take unfiltered streams.
var sourceFor = map[string]sourceExts{
	"mp4":  {video: "mp4", audio: "m4a"},
	"mov":  {video: "mp4", audio: "m4a"},
	"webm": {video: "webm", audio: "webm"},
}

func IsMergeFormat(container string) bool {
	return slices.Contains(MergeFormats, strings.ToLower(strings.TrimSpace(container)))
}

// TierSpec is the three-step preference for one tier: merged video+audio at
// exactly the tier height, a single combined stream at the tier height, and
// anything at or below it.
type TierSpec struct {
	Tier int
	Spec string
}

type Chain []TierSpec

// String renders the chain as a single format argument for yt-dlp.
func (c Chain) String() string {
	specs := make([]string, 0, len(c))
	for _, t := range c {
		specs = append(specs, t.Spec)
	}
	return strings.Join(specs, Separator)
}

func (c Chain) Tiers() []int {
	tiers := make([]int, 0, len(c))
	for _, t := range c {
		tiers = append(tiers, t.Tier)
	}
	return tiers
}

func BuildFallbackChain(ceiling int) Chain {
	return BuildFallbackChainFor(ceiling, DefaultContainer)
}

func BuildFallbackChainFor(ceiling int, container string) Chain {
	container = strings.ToLower(strings.TrimSpace(container))
	if container == "" {
		container = DefaultContainer
	}
	var chain Chain
	for _, tier := range Tiers {
		if tier <= ceiling {
			chain = append(chain, TierSpec{Tier: tier, Spec: tierSpec(tier, container)})
		}
	}
	if len(chain) == 0 {
		lowest := Tiers[len(Tiers)-1]
		chain = Chain{{Tier: lowest, Spec: tierSpec(lowest, container)}}
	}
	return chain
}

func tierSpec(tier int, container string) string {
	src, ok := sourceFor[container]
	if !ok {
		return fmt.Sprintf("bestvideo[height=%d]+bestaudio/best[height=%d]/best[height<=%d]", tier, tier, tier)
	}
	return fmt.Sprintf("bestvideo[height=%d][ext=%s]+bestaudio[ext=%s]/best[height=%d][ext=%s]/best[height<=%d][ext=%s]",
		tier, src.video, src.audio, tier, src.video, tier, src.video)
}

// ParseQuality turns "1080p" (or "1080") into a tier number.
func ParseQuality(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "p")
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q", raw)
	}
	if q <= 0 {
		return 0, fmt.Errorf("quality must be positive, got %q", raw)
	}
	return q, nil
}
