// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hantmac/setup-bendsql/pkg/utils"
)

// InstallArchive extracts the archive bytes into dest based on the
// archive extension.
func InstallArchive(ext string, archive []byte, dest string) error {
	switch ext {
	case "zip":
		return installZipArchive(archive, dest)
	case tarExtension:
		return installTarGzArchive(archive, dest)
	default:
		return fmt.Errorf("unsupported archive extension: %s", ext)
	}
}

func installTarGzArchive(archive []byte, dest string) error {
	gr, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, header.Name)
		if err := checkInsideDest(dest, target, header.Name); err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}
	}

	return nil
}

func installZipArchive(archive []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("failed to create zip reader: %w", err)
	}

	for _, zf := range zr.File {
		target := filepath.Join(dest, zf.Name)
		if err := checkInsideDest(dest, target, zf.Name); err != nil {
			return err
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := zf.Open()
		if err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, zf.Mode())
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(f, rc); err != nil {
			f.Close()
			rc.Close()
			return err
		}
		f.Close()
		rc.Close()
	}

	return nil
}

// checkInsideDest validates the extraction target path to prevent Zip Slip
func checkInsideDest(dest, target, name string) error {
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	// "./" entries clean to dest itself; tar -C dir . produces them
	if targetAbs == destAbs {
		return nil
	}
	if !strings.HasPrefix(targetAbs, destAbs+string(os.PathSeparator)) {
		return fmt.Errorf("invalid file path in archive: %s", name)
	}
	return nil
}

// FindExecutable locates an executable named name in the extracted
// archive contents, falling back to the first executable found.
func FindExecutable(dir string, name string) (string, error) {
	var foundPath string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !utils.IsExecutable(path) {
			return nil
		}
		if filepath.Base(path) == name {
			foundPath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return "", err
	}

	if foundPath == "" {
		// fall back to any executable
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if utils.IsExecutable(path) {
				foundPath = path
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !errors.Is(err, filepath.SkipAll) {
			return "", err
		}
	}

	if foundPath == "" {
		return "", fmt.Errorf("no executable binary found in archive")
	}

	return foundPath, nil
}
