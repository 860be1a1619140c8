// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var ErrNoReleases = errors.New("no releases found for repository")

// httpStatusError carries the response code so the retry loop can tell
// permanent client errors from transient server ones.
type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected http status code: %d", e.code)
}

// Downloader fetches release artifacts and queries the GitHub releases API.
type Downloader interface {
	Download(url string) ([]byte, error)
	GetLatestReleaseVersion(releaseURL string) (string, error)
	GetLatestPreReleaseVersion(releasesURL string) (string, error)
	GetAllReleaseVersions(releasesURL string) ([]string, error)
}

type downloader struct {
	client    *http.Client
	retries   int
	retryWait time.Duration
}

func NewDownloader() Downloader {
	return &downloader{
		client:    &http.Client{Timeout: constants.RequestTimeout},
		retries:   constants.DownloadRetryCount,
		retryWait: constants.DownloadRetryWait,
	}
}

// Download GETs the url, retrying transient failures a fixed number of
// times before giving up. A progress bar is shown when stdout is a TTY.
func (d *downloader) Download(url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(d.retryWait)
		}
		data, err := d.downloadOnce(url)
		if err == nil {
			return data, nil
		}
		// 4xx is permanent: the asset does not exist, retrying can't help
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) && statusErr.code >= http.StatusBadRequest && statusErr.code < http.StatusInternalServerError {
			return nil, fmt.Errorf("download of %s failed: %w", url, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("download of %s failed after %d attempts: %w", url, d.retries+1, lastErr)
}

func (d *downloader) downloadOnce(url string) ([]byte, error) {
	resp, err := d.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{code: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if isatty.IsTerminal(os.Stdout.Fd()) && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
		reader = io.TeeReader(resp.Body, bar)
	}
	return io.ReadAll(reader)
}

// GetLatestReleaseVersion returns the tag of the latest release from a
// GitHub releases/latest API endpoint.
func (d *downloader) GetLatestReleaseVersion(releaseURL string) (string, error) {
	// Releases API calls are small; a tighter timeout applies.
	client := &http.Client{Timeout: constants.APIRequestTimeout}
	resp, err := client.Get(releaseURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to query release info: unexpected http status code: %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(jsonBytes, &release); err != nil {
		return "", fmt.Errorf("failed to unmarshal binary json version string: %w", err)
	}
	return release.TagName, nil
}

// GetLatestPreReleaseVersion returns the tag of the newest release from
// a GitHub releases list API endpoint, pre-releases included.
func (d *downloader) GetLatestPreReleaseVersion(releasesURL string) (string, error) {
	releases, err := d.getReleases(releasesURL)
	if err != nil {
		return "", err
	}
	if len(releases) == 0 {
		return "", ErrNoReleases
	}
	return releases[0].TagName, nil
}

// GetAllReleaseVersions returns all published release tags, newest
// first, pre-releases excluded.
func (d *downloader) GetAllReleaseVersions(releasesURL string) ([]string, error) {
	releases, err := d.getReleases(releasesURL)
	if err != nil {
		return nil, err
	}
	versions := []string{}
	for _, r := range releases {
		if r.Prerelease {
			continue
		}
		versions = append(versions, r.TagName)
	}
	if len(versions) == 0 {
		return nil, ErrNoReleases
	}
	return versions, nil
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
}

func (d *downloader) getReleases(releasesURL string) ([]githubRelease, error) {
	client := &http.Client{Timeout: constants.APIRequestTimeout}
	resp, err := client.Get(releasesURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to query releases: unexpected http status code: %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var releases []githubRelease
	if err := json.Unmarshal(jsonBytes, &releases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal releases json: %w", err)
	}
	return releases, nil
}
