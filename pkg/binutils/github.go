// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/hantmac/setup-bendsql/pkg/constants"
)

const (
	linux  = "linux"
	darwin = "darwin"

	debExtension = "deb"
	tarExtension = "tar.gz"
)

type GithubDownloader interface {
	GetDownloadURL(version string) (string, string, error)
}

// bendsqlDownloader selects release assets for one platform; tests pin
// goarch/goos instead of using the host's.
type bendsqlDownloader struct {
	goarch string
	goos   string
}

var _ GithubDownloader = (*bendsqlDownloader)(nil)

func GetGithubLatestReleaseURL(org, repo string) string {
	return "https://api.github.com/repos/" + org + "/" + repo + "/releases/latest"
}

func GetGithubReleasesURL(org, repo string) string {
	return "https://api.github.com/repos/" + org + "/" + repo + "/releases"
}

func NewBendsqlDownloader() GithubDownloader {
	return &bendsqlDownloader{goarch: runtime.GOARCH, goos: runtime.GOOS}
}

// GetDownloadURL picks the release asset for the platform: a .deb
// package on linux, a tarball on darwin.
func (d *bendsqlDownloader) GetDownloadURL(version string) (string, string, error) {
	// NOTE: if any of the underlying URLs change (github changes, release file names, etc.) this fails
	var bendsqlURL string
	var ext string

	switch d.goos {
	case linux:
		// deb assets drop the v prefix from the file name
		bendsqlURL = fmt.Sprintf(
			"https://github.com/%s/%s/releases/download/%s/bendsql_%s_%s.deb",
			constants.BendsqlOrg,
			constants.BendsqlRepoName,
			version,
			strings.TrimPrefix(version, "v"),
			d.goarch,
		)
		ext = debExtension
	case darwin:
		cpu, err := darwinCPU(d.goarch)
		if err != nil {
			return "", "", err
		}
		bendsqlURL = fmt.Sprintf(
			"https://github.com/%s/%s/releases/download/%s/bendsql-%s-apple-darwin.tar.gz",
			constants.BendsqlOrg,
			constants.BendsqlRepoName,
			version,
			cpu,
		)
		ext = tarExtension
	default:
		return "", "", fmt.Errorf("OS not supported: %s", d.goos)
	}

	return bendsqlURL, ext, nil
}

// darwinCPU maps GOARCH to the rust target cpu used in asset names
func darwinCPU(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return "x86_64", nil
	case "arm64":
		return "aarch64", nil
	default:
		return "", fmt.Errorf("arch not supported: %s", goarch)
	}
}
