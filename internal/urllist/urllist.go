package urllist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"gopkg.in/yaml.v3"
)

var (
	ErrListMissing = errors.New("URL list file not found")
	ErrListEmpty   = errors.New("no URLs found in list file")
)

// Entry is one item of a YAML batch list.
type Entry struct {
	Link string `yaml:"link"`
}

// Read returns the URLs in file order. Blank lines are skipped, duplicates
// are kept. Files ending in .yaml or .yml are read as a list of link entries.
func Read(path string) ([]string, error) {
	log := utils.GetLogger("urllist")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrListMissing, path)
		}
		return nil, fmt.Errorf("error reading URL list: %w", err)
	}

	var urls []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		urls, err = parseYAML(data)
		if err != nil {
			return nil, err
		}
	default:
		urls = parseLines(data)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrListEmpty, path)
	}
	log.Debug().Int("count", len(urls)).Msgf("Loaded URLs from %s", path)
	return urls, nil
}

func parseLines(data []byte) []string {
	var urls []string
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

func parseYAML(data []byte) ([]string, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML list: %w", err)
	}
	var urls []string
	for i, entry := range entries {
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			return nil, fmt.Errorf("missing link for entry %d", i+1)
		}
		urls = append(urls, link)
	}
	return urls, nil
}
