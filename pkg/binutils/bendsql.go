// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/utils"
)

// SetupBendsql downloads and installs the given bendsql version for the
// host platform and returns the path of the installed binary.
func SetupBendsql(app *application.Bendsql, version string, installDir string) (string, error) {
	return InstallBinary(app, version, installDir, NewBendsqlDownloader())
}

// InstallBinary performs one download and one install. The install
// mechanism follows the asset type: package manager for .deb, archive
// extraction plus move for tarballs. installDir only applies to the
// tarball path; the package manager decides placement for debs.
func InstallBinary(
	app *application.Bendsql,
	version string,
	installDir string,
	downloader GithubDownloader,
) (string, error) {
	url, ext, err := downloader.GetDownloadURL(version)
	if err != nil {
		return "", err
	}
	app.Log.Debugw("downloading release asset", "url", url)

	archive, err := app.Downloader.Download(url)
	if err != nil {
		return "", err
	}

	switch ext {
	case debExtension:
		return installFromDeb(app, url, archive)
	case tarExtension:
		return installFromTarball(archive, installDir)
	default:
		return "", fmt.Errorf("unsupported asset type: %s", ext)
	}
}

func installFromDeb(app *application.Bendsql, url string, archive []byte) (string, error) {
	downloadsDir := app.GetDownloadsDir()
	if err := os.MkdirAll(downloadsDir, constants.DefaultPerms755); err != nil {
		return "", fmt.Errorf("failed creating downloads dir %s: %w", downloadsDir, err)
	}
	pkgPath := filepath.Join(downloadsDir, filepath.Base(url))
	if err := os.WriteFile(pkgPath, archive, constants.WriteReadReadPerms); err != nil {
		return "", fmt.Errorf("failed writing package file: %w", err)
	}

	if err := InstallDebPackage(pkgPath); err != nil {
		return "", err
	}

	// the package manager chose the destination; resolve it via PATH
	binPath, err := FindBendsql()
	if err != nil {
		return "", fmt.Errorf("package installed but %s not found on PATH: %w", constants.BendsqlBinName, err)
	}
	return binPath, nil
}

func installFromTarball(archive []byte, installDir string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "setup-bendsql-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := InstallArchive(tarExtension, archive, tmpDir); err != nil {
		return "", fmt.Errorf("failed to extract archive: %w", err)
	}

	srcPath, err := FindExecutable(tmpDir, constants.BendsqlBinName)
	if err != nil {
		return "", fmt.Errorf("failed to find binary in archive: %w", err)
	}

	if err := os.MkdirAll(installDir, constants.DefaultPerms755); err != nil {
		return "", fmt.Errorf("failed creating install dir %s: %w", installDir, err)
	}
	targetPath := filepath.Join(installDir, constants.BendsqlBinName)
	if err := os.Rename(srcPath, targetPath); err != nil {
		// rename fails across devices; fall back to a copy
		if err := utils.CopyFile(srcPath, targetPath); err != nil {
			return "", fmt.Errorf("failed moving binary to %s: %w", targetPath, err)
		}
	}
	if err := os.Chmod(targetPath, constants.DefaultPerms755); err != nil {
		return "", err
	}
	return targetPath, nil
}
