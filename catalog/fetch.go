package catalog

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// Image catalog files probed when mirroring a remote knowledge graph. Missing
// catalogs are skipped; the three core artifacts are required.
var remoteImageCatalogs = []string{"dockerhub.json", "openshift.json", "operators.json"}

// FetchArtifacts mirrors the knowledge-graph artifacts from baseURL into dir
// so the loader can read them locally. Each required artifact is retried
// with exponential backoff; the pipeline itself never performs network I/O.
func FetchArtifacts(baseURL, dir string) error {
	const initialInterval = 5 * time.Second
	const maxInterval = 1 * time.Minute

	baseURL = strings.TrimSuffix(baseURL, "/")

	if err := os.MkdirAll(filepath.Join(dir, ImagesDir), 0o755); err != nil {
		return fmt.Errorf("catalog mirror dir: %w", err)
	}

	required := []string{EntitiesFile, VersionsFile, CompatibilitiesFile}
	for _, name := range required {
		if err := fetchWithRetry(baseURL+"/"+name, filepath.Join(dir, name), initialInterval, maxInterval); err != nil {
			return fmt.Errorf("catalog artifact %s: %w", name, err)
		}
	}

	found := 0
	for _, name := range remoteImageCatalogs {
		rel := ImagesDir + "/" + name
		err := fetchWithRetry(baseURL+"/"+rel, filepath.Join(dir, ImagesDir, name), initialInterval, maxInterval)
		if err == errNotFound {
			logger.Sugar().Infof("Image catalog %s not published, skipping", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("catalog artifact %s: %w", rel, err)
		}
		found++
	}
	if found == 0 {
		return fmt.Errorf("catalog artifact %s: remote publishes no image catalogs", ImagesDir)
	}

	logger.Sugar().Infof("Mirrored knowledge graph from %s into %s", baseURL, dir)
	return nil
}

var errNotFound = fmt.Errorf("not found")

func fetchWithRetry(url, dest string, initialInterval, maxInterval time.Duration) error {
	// Configure exponential backoff
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 5 * time.Minute

	// Retry logic
	return backoff.RetryNotify(func() error {
		resp, err := http.Get(url) // #nosec G107
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(errNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0o644)
	}, bo, func(err error, _ time.Duration) {
		logger.Sugar().Infof("Retrying download of %s: %v", url, err)
	})
}
