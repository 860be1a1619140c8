// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package installcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/binutils"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/prompts"
	"github.com/hantmac/setup-bendsql/pkg/utils"
	"github.com/hantmac/setup-bendsql/pkg/ux"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

var app *application.Bendsql

var (
	installVersion string
	useLatest      bool
	installDir     string
	force          bool
)

func NewCmd(injectedApp *application.Bendsql) *cobra.Command {
	app = injectedApp

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the bendsql client",
		Long: `Install the bendsql client.

If a functional bendsql is already on PATH, nothing is downloaded and
nothing is written; the command reports the installed version and exits.

Otherwise the release asset for this platform is downloaded and
installed: a .deb through the package manager on linux, a tarball
extracted and moved into the install directory on macOS. The install
ends with a version check of the freshly installed binary.

EXAMPLES:

  # Install the pinned default version
  setup-bendsql install

  # Install a specific version
  setup-bendsql install --version v0.9.5

  # Install the latest released version
  setup-bendsql install --latest`,
		Args: cobra.NoArgs,
		RunE: runInstall,
	}

	cmd.Flags().StringVarP(&installVersion, "version", "v", "", "version to install (default: "+constants.DefaultBendsqlVersion+")")
	cmd.Flags().BoolVar(&useLatest, "latest", false, "install the latest released version")
	cmd.Flags().StringVar(&installDir, "install-dir", "", "directory to place the binary in on the tarball path (default: "+constants.DefaultInstallDir+")")
	cmd.Flags().BoolVar(&force, "force", false, "reinstall even if bendsql is already present")

	return cmd
}

func runInstall(_ *cobra.Command, _ []string) error {
	// probe first: a functional binary means early success
	if !force {
		versionOut, err := binutils.InstalledBendsqlVersion()
		if err == nil {
			done, err := handleAlreadyInstalled(versionOut)
			if done || err != nil {
				return err
			}
		}
	}

	version, err := resolveVersion()
	if err != nil {
		return err
	}
	dir := resolveInstallDir()

	tracker := ux.NewStepTracker(ux.Logger)
	tracker.Start(fmt.Sprintf("Installing %s %s", constants.BendsqlBinName, version))

	binPath, err := binutils.SetupBendsql(app, version, dir)
	if err != nil {
		tracker.Failed(err.Error())
		ux.Logger.PrintError("install failed; logs are in %s", app.GetLogDir())
		return err
	}
	tracker.Complete(binPath)

	// verify: re-invoke the installed binary and surface its output
	versionOut, err := binutils.BendsqlVersionOutput(binPath)
	if err != nil {
		return fmt.Errorf("installed binary failed verification: %w", err)
	}
	ux.Logger.PrintToUser("%s", versionOut)
	ux.Logger.GreenCheckmarkToUser("%s %s installed to %s", constants.BendsqlBinName, version, binPath)

	return nil
}

// handleAlreadyInstalled decides what to do when the probe succeeds.
// Returns true when the command is finished (success, nothing to do).
func handleAlreadyInstalled(versionOut string) (bool, error) {
	installed, parseErr := binutils.ParseBendsqlSemver(versionOut)

	requested := ""
	if installVersion != "" {
		requested = normalizeVersion(installVersion)
	}

	// no explicit version requested, or it matches: early success
	if requested == "" || (parseErr == nil && semver.Compare(installed, requested) == 0) {
		ux.Logger.GreenCheckmarkToUser("%s already installed: %s", constants.BendsqlBinName, versionOut)
		return true, nil
	}

	// a different version was asked for: confirm the reinstall when we can
	yes, err := app.Prompt.CaptureYesNo(
		fmt.Sprintf("%s %s is installed but %s was requested. Reinstall?", constants.BendsqlBinName, installed, requested))
	if err != nil {
		if errors.Is(err, prompts.ErrNonInteractive) {
			ux.Logger.PrintToUser("%s %s already installed; rerun with --force to replace it with %s",
				constants.BendsqlBinName, installed, requested)
			return true, nil
		}
		return false, err
	}
	if !yes {
		ux.Logger.PrintToUser("Keeping installed %s %s", constants.BendsqlBinName, installed)
		return true, nil
	}
	return false, nil
}

// resolveVersion applies the precedence: --latest / --version flag >
// BENDSQL_VERSION env > config file > prompt (interactive sessions
// only) > pinned default.
func resolveVersion() (string, error) {
	if useLatest {
		url := binutils.GetGithubLatestReleaseURL(constants.BendsqlOrg, constants.BendsqlRepoName)
		latest, err := app.Downloader.GetLatestReleaseVersion(url)
		if err != nil {
			return "", fmt.Errorf("failed to get latest version: %w", err)
		}
		ux.Logger.PrintToUser("Latest version: %s", latest)
		return latest, nil
	}
	if installVersion != "" {
		return normalizeVersion(installVersion), nil
	}
	if app.Conf.ConfigValueIsSet(constants.ConfigVersionKey) {
		if v := app.Conf.GetConfigStringValue(constants.ConfigVersionKey); v != "" {
			return normalizeVersion(v), nil
		}
	}

	// nothing specified one: ask an interactive user, otherwise pin
	v, err := app.Prompt.CaptureVersion(
		fmt.Sprintf("Version to install (ex: %s)", constants.DefaultBendsqlVersion))
	if err != nil {
		if errors.Is(err, prompts.ErrNonInteractive) {
			return constants.DefaultBendsqlVersion, nil
		}
		return "", err
	}
	return normalizeVersion(v), nil
}

func resolveInstallDir() string {
	if installDir != "" {
		return utils.ExpandHome(installDir)
	}
	if app.Conf.ConfigValueIsSet(constants.ConfigInstallDirKey) {
		if d := app.Conf.GetConfigStringValue(constants.ConfigInstallDirKey); d != "" {
			return utils.ExpandHome(d)
		}
	}
	return constants.DefaultInstallDir
}

func normalizeVersion(version string) string {
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}
