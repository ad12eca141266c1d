// Package update checks a release feed for newer versions and replaces the
// running executable with the artifact published for this platform.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/mod/semver"
)

var (
	ErrNoDownload          = errors.New("update: no download for this platform")
	ErrUnsupportedPlatform = errors.New("update: unsupported platform")
)

var defaultClient = &http.Client{Timeout: 10 * time.Second}

// VersionInfo is the document served by the release feed.
type VersionInfo struct {
	Version     string            `json:"version"`
	ReleaseDate string            `json:"release_date"`
	Downloads   map[string]string `json:"downloads"`
}

// Result describes an available update.
type Result struct {
	Current     string
	Latest      string
	ReleaseDate string
	DownloadURL string
}

type Checker struct {
	URL      string
	Current  string
	Platform string
	Client   *http.Client
}

func NewChecker(url, current string) *Checker {
	return &Checker{
		URL:      url,
		Current:  current,
		Platform: Platform(),
		Client:   defaultClient,
	}
}

// Check returns a non-nil Result only when the feed advertises a version
// newer than the running one. Development builds never report updates.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	current, ok := normalizeVersion(c.Current)
	if !ok {
		log.Debug().Str("version", c.Current).Msg("update check: skipping, current version is not semver")
		return nil, nil
	}

	info, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	latest, ok := normalizeVersion(info.Version)
	if !ok {
		return nil, fmt.Errorf("update check: invalid release version %q", info.Version)
	}
	if semver.Compare(current, latest) >= 0 {
		return nil, nil
	}

	if c.Platform == "unknown" {
		return nil, ErrUnsupportedPlatform
	}
	url, ok := info.Downloads[c.Platform]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDownload, c.Platform)
	}

	return &Result{
		Current:     current,
		Latest:      latest,
		ReleaseDate: info.ReleaseDate,
		DownloadURL: url,
	}, nil
}

func (c *Checker) fetch(ctx context.Context) (VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("request version info: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug().Err(err).Msg("update check: close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return VersionInfo{}, fmt.Errorf("request version info: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("read version info: %w", err)
	}

	var info VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return VersionInfo{}, fmt.Errorf("decode version info: %w", err)
	}
	if info.Version == "" {
		return VersionInfo{}, errors.New("decode version info: missing version")
	}
	return info, nil
}

// Platform returns the feed's key for the running OS and architecture.
func Platform() string {
	return platformKey(runtime.GOOS, runtime.GOARCH)
}

func platformKey(goos, goarch string) string {
	switch goos {
	case "darwin":
		goos = "macos"
	case "linux", "windows":
	default:
		return "unknown"
	}
	switch goarch {
	case "amd64", "arm64":
	default:
		return "unknown"
	}
	return goos + "-" + goarch
}

func normalizeVersion(version string) (string, bool) {
	if semver.IsValid(version) {
		return version, true
	}

	withPrefix := "v" + version
	if semver.IsValid(withPrefix) {
		return withPrefix, true
	}

	return "", false
}
