package dataset

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Download fetches the four IDX files of a source into dir, skipping
// files that are already present. The gzip payloads are digest-checked
// (when the source pins digests) before being decompressed in place.
//
// Download is safe to call before every run: a warm cache costs four
// os.Stat calls.
func (s Source) Download(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	names := []string{trainImagesFile, trainLabelsFile, testImagesFile, testLabelsFile}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			return s.fetchFile(ctx, dir, name)
		})
	}
	return g.Wait()
}

// fetchFile downloads and unpacks a single IDX file unless it is
// already cached.
func (s Source) fetchFile(ctx context.Context, dir, name string) error {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		slog.Debug("dataset file cached", "dataset", s.Name, "file", name)
		return nil
	}

	url := s.BaseURL + name + ".gz"
	slog.Info("downloading dataset file", "dataset", s.Name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	// Buffer the compressed payload in a temp file so a failed digest
	// check never leaves a partial file at the final path.
	tmp, err := os.CreateTemp(dir, name+".gz.*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body); err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}

	if want, ok := s.digests[name+".gz"]; ok {
		got := hex.EncodeToString(hash.Sum(nil))
		if got != want {
			return fmt.Errorf("digest mismatch for %s: got %s, want %s", name+".gz", got, want)
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := gunzipTo(dest, tmp); err != nil {
		return fmt.Errorf("unpack %s: %w", name, err)
	}

	slog.Info("dataset file ready", "dataset", s.Name, "file", name)
	return nil
}

func gunzipTo(dest string, src io.Reader) error {
	gz, err := gzip.NewReader(src)
	if err != nil {
		return err
	}
	defer gz.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, gz); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
