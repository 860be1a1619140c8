// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetDownloadURL(t *testing.T) {
	type urlTest struct {
		name        string
		goarch      string
		goos        string
		version     string
		expectedURL string
		expectedExt string
		wantErr     bool
	}

	tests := []urlTest{
		{
			name:        "linux amd64 uses the deb asset",
			goarch:      "amd64",
			goos:        "linux",
			version:     "v0.9.5",
			expectedURL: "https://github.com/databendlabs/bendsql/releases/download/v0.9.5/bendsql_0.9.5_amd64.deb",
			expectedExt: "deb",
		},
		{
			name:        "linux arm64 uses the deb asset",
			goarch:      "arm64",
			goos:        "linux",
			version:     "v0.9.5",
			expectedURL: "https://github.com/databendlabs/bendsql/releases/download/v0.9.5/bendsql_0.9.5_arm64.deb",
			expectedExt: "deb",
		},
		{
			name:        "darwin amd64 uses the x86_64 tarball",
			goarch:      "amd64",
			goos:        "darwin",
			version:     "v0.9.5",
			expectedURL: "https://github.com/databendlabs/bendsql/releases/download/v0.9.5/bendsql-x86_64-apple-darwin.tar.gz",
			expectedExt: "tar.gz",
		},
		{
			name:        "darwin arm64 uses the aarch64 tarball",
			goarch:      "arm64",
			goos:        "darwin",
			version:     "v0.10.0",
			expectedURL: "https://github.com/databendlabs/bendsql/releases/download/v0.10.0/bendsql-aarch64-apple-darwin.tar.gz",
			expectedExt: "tar.gz",
		},
		{
			name:    "windows is not supported",
			goarch:  "amd64",
			goos:    "windows",
			version: "v0.9.5",
			wantErr: true,
		},
		{
			name:    "unknown darwin arch is not supported",
			goarch:  "riscv64",
			goos:    "darwin",
			version: "v0.9.5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			downloader := &bendsqlDownloader{goarch: tt.goarch, goos: tt.goos}
			url, ext, err := downloader.GetDownloadURL(tt.version)
			if tt.wantErr {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal(tt.expectedURL, url)
			require.Equal(tt.expectedExt, ext)
		})
	}
}

func TestGetGithubURLs(t *testing.T) {
	require := require.New(t)
	require.Equal(
		"https://api.github.com/repos/databendlabs/bendsql/releases/latest",
		GetGithubLatestReleaseURL("databendlabs", "bendsql"),
	)
	require.Equal(
		"https://api.github.com/repos/databendlabs/bendsql/releases",
		GetGithubReleasesURL("databendlabs", "bendsql"),
	)
}
