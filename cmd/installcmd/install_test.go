// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package installcmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hantmac/setup-bendsql/internal/mocks"
	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/config"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/prompts"
	"github.com/hantmac/setup-bendsql/pkg/ux"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, downloader application.Downloader, prompter prompts.Prompter) *application.Bendsql {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetFlags(t)
	ux.NewUserLog(zap.NewNop().Sugar(), io.Discard)
	a := application.New()
	a.Setup(t.TempDir(), zap.NewNop().Sugar(), config.New(), prompter, downloader)
	app = a
	return a
}

func resetFlags(t *testing.T) {
	t.Helper()
	installVersion, useLatest, installDir, force = "", false, "", false
	t.Cleanup(func() {
		installVersion, useLatest, installDir, force = "", false, "", false
	})
}

// putFakeBendsqlOnPath puts a working bendsql stand-in on PATH
func putFakeBendsqlOnPath(t *testing.T, version string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes don't run on windows")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"bendsql " + version + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bendsql"), []byte(script), 0o755))
	t.Setenv("PATH", dir)
}

// writeConfigFile loads contents into viper at config-file level, so
// env bindings keep their higher precedence
func writeConfigFile(t *testing.T, contents string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
}

// stubVersionPrompter answers version prompts with a canned value
type stubVersionPrompter struct {
	prompts.Prompter
	version string
}

func (s *stubVersionPrompter) CaptureVersion(string) (string, error) {
	return s.version, nil
}

func TestInstallSkipsWhenBinaryPresent(t *testing.T) {
	require := require.New(t)

	mockDownloader := &mocks.Downloader{}
	a := newTestApp(t, mockDownloader, prompts.NewPrompterForMode(true))
	putFakeBendsqlOnPath(t, "0.9.5")

	require.NoError(runInstall(nil, nil))

	// a functional binary means no network and no filesystem mutation
	mockDownloader.AssertNotCalled(t, "Download", mock.Anything)
	mockDownloader.AssertNotCalled(t, "GetLatestReleaseVersion", mock.Anything)
	require.NoDirExists(a.GetDownloadsDir())
}

func TestInstallKeepsMismatchedBinaryWhenNonInteractive(t *testing.T) {
	require := require.New(t)

	mockDownloader := &mocks.Downloader{}
	newTestApp(t, mockDownloader, prompts.NewPrompterForMode(true))
	putFakeBendsqlOnPath(t, "0.9.5")
	installVersion = "v0.10.0"

	// without --force the installed binary stays, with a hint printed
	require.NoError(runInstall(nil, nil))
	mockDownloader.AssertNotCalled(t, "Download", mock.Anything)
}

func TestInstallSurfacesDownloadFailure(t *testing.T) {
	require := require.New(t)
	if runtime.GOOS == "windows" {
		t.Skip("release assets only exist for linux and darwin")
	}

	mockDownloader := &mocks.Downloader{}
	mockDownloader.On("Download", mock.Anything).Return(nil, errors.New("retries exhausted"))

	newTestApp(t, mockDownloader, prompts.NewPrompterForMode(true))
	t.Setenv("PATH", t.TempDir()) // no bendsql anywhere
	installVersion = "v0.9.5"

	err := runInstall(nil, nil)
	require.ErrorContains(err, "retries exhausted")
}

func TestResolveVersionPrecedence(t *testing.T) {
	type versionTest struct {
		name     string
		setup    func(t *testing.T)
		prompter prompts.Prompter
		expected string
	}

	tests := []versionTest{
		{
			name: "latest flag queries the release api",
			setup: func(*testing.T) {
				useLatest = true
			},
			expected: "v1.2.3",
		},
		{
			name: "flag wins over env and config",
			setup: func(t *testing.T) {
				installVersion = "0.9.1"
				require.NoError(t, viper.BindEnv(constants.ConfigVersionKey, constants.EnvBendsqlVersion))
				t.Setenv(constants.EnvBendsqlVersion, "v0.9.2")
				writeConfigFile(t, `{"version":"v0.9.3"}`)
			},
			expected: "v0.9.1",
		},
		{
			name: "env wins over config",
			setup: func(t *testing.T) {
				require.NoError(t, viper.BindEnv(constants.ConfigVersionKey, constants.EnvBendsqlVersion))
				t.Setenv(constants.EnvBendsqlVersion, "v0.9.2")
				writeConfigFile(t, `{"version":"v0.9.3"}`)
			},
			expected: "v0.9.2",
		},
		{
			name: "config wins over default",
			setup: func(t *testing.T) {
				writeConfigFile(t, `{"version":"0.9.3"}`)
			},
			expected: "v0.9.3",
		},
		{
			name:     "interactive session is prompted",
			prompter: &stubVersionPrompter{version: "0.8.7"},
			expected: "v0.8.7",
		},
		{
			name:     "pinned default when nothing specifies one",
			expected: constants.DefaultBendsqlVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			mockDownloader := &mocks.Downloader{}
			mockDownloader.On("GetLatestReleaseVersion", mock.Anything).Return("v1.2.3", nil)

			prompter := tt.prompter
			if prompter == nil {
				prompter = prompts.NewPrompterForMode(true)
			}
			newTestApp(t, mockDownloader, prompter)
			if tt.setup != nil {
				tt.setup(t)
			}

			v, err := resolveVersion()
			require.NoError(err)
			require.Equal(tt.expected, v)
		})
	}
}

func TestResolveInstallDir(t *testing.T) {
	require := require.New(t)

	newTestApp(t, &mocks.Downloader{}, prompts.NewPrompterForMode(true))

	require.Equal(constants.DefaultInstallDir, resolveInstallDir())

	writeConfigFile(t, `{"install-dir":"/opt/bendsql/bin"}`)
	require.Equal("/opt/bendsql/bin", resolveInstallDir())

	home, err := os.UserHomeDir()
	require.NoError(err)
	installDir = "~/bin"
	require.Equal(filepath.Join(home, "bin"), resolveInstallDir())
}
