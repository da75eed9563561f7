package bootstrap

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// installArchive downloads the tool's zip release into Dir/<name> and returns
// the directory holding its binary.
func (b *Bootstrapper) installArchive(ctx context.Context, tool Tool) (string, error) {
	target := filepath.Join(b.Dir, tool.Name)
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("error creating %s: %w", target, err)
	}
	archive := filepath.Join(target, "temp.zip")
	if err := b.downloadFile(ctx, tool.WindowsURL, archive); err != nil {
		return "", fmt.Errorf("error downloading %s: %w", tool.Name, err)
	}
	defer os.Remove(archive)
	if err := extractZip(archive, target); err != nil {
		return "", fmt.Errorf("error extracting %s: %w", tool.Name, err)
	}
	bin, err := findBinary(target, tool.WindowsBinary)
	if err != nil {
		return "", err
	}
	log.Debug().Str("op", "bootstrap/archive").Msgf("Found %s at %s", tool.WindowsBinary, bin)
	return filepath.Dir(bin), nil
}

func (b *Bootstrapper) downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()
	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(path, root) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := extractFile(f, path); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, path string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode()|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

var errFound = errors.New("found")

func findBinary(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), name) {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%s not found in extracted archive", name)
	}
	return found, nil
}
