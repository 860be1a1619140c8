// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name    string
	content string
	mode    int64
	dir     bool
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Typeflag: tar.TypeReg,
		}
		if e.dir {
			hdr.Typeflag = tar.TypeDir
		} else {
			hdr.Size = int64(len(e.content))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestInstallTarGzArchive(t *testing.T) {
	require := require.New(t)

	archive := buildTarGz(t, []tarEntry{
		{name: "bendsql", content: "#!/bin/sh\necho bendsql 0.9.5\n", mode: 0o755},
		{name: "README.md", content: "docs", mode: 0o644},
	})

	dest := t.TempDir()
	require.NoError(InstallArchive("tar.gz", archive, dest))

	binPath := filepath.Join(dest, "bendsql")
	info, err := os.Stat(binPath)
	require.NoError(err)
	require.NotZero(info.Mode() & 0o111)

	found, err := FindExecutable(dest, "bendsql")
	require.NoError(err)
	require.Equal(binPath, found)
}

func TestInstallTarGzArchiveDotPrefixedEntries(t *testing.T) {
	// tar -czf bendsql.tgz -C dir . produces a leading "./" entry that
	// must extract to the destination itself, not be rejected
	require := require.New(t)

	archive := buildTarGz(t, []tarEntry{
		{name: "./", mode: 0o755, dir: true},
		{name: "./bendsql", content: "#!/bin/sh\necho bendsql 0.9.5\n", mode: 0o755},
	})

	dest := t.TempDir()
	require.NoError(InstallArchive("tar.gz", archive, dest))

	found, err := FindExecutable(dest, "bendsql")
	require.NoError(err)
	require.Equal(filepath.Join(dest, "bendsql"), found)
}

func TestInstallTarGzArchiveRejectsPathTraversal(t *testing.T) {
	require := require.New(t)

	archive := buildTarGz(t, []tarEntry{
		{name: "../evil", content: "nope", mode: 0o644},
	})

	err := InstallArchive("tar.gz", archive, t.TempDir())
	require.ErrorContains(err, "invalid file path in archive")
}

func TestInstallZipArchive(t *testing.T) {
	require := require.New(t)

	archive := buildZip(t, "bendsql", "binary-bytes")
	dest := t.TempDir()
	require.NoError(InstallArchive("zip", archive, dest))
	require.FileExists(filepath.Join(dest, "bendsql"))
}

func TestInstallArchiveUnsupportedExtension(t *testing.T) {
	require := require.New(t)
	err := InstallArchive("rar", []byte("x"), t.TempDir())
	require.ErrorContains(err, "unsupported archive extension")
}

func TestFindExecutableFallsBackToAnyExecutable(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	other := filepath.Join(dir, "bin", "bendsql-cli")
	require.NoError(os.MkdirAll(filepath.Dir(other), 0o755))
	require.NoError(os.WriteFile(other, []byte("bin"), 0o755))

	found, err := FindExecutable(dir, "bendsql")
	require.NoError(err)
	require.Equal(other, found)
}

func TestFindExecutableEmptyArchive(t *testing.T) {
	require := require.New(t)
	_, err := FindExecutable(t.TempDir(), "bendsql")
	require.ErrorContains(err, "no executable binary found")
}
