// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package versionscmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/binutils"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/ux"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

var app *application.Bendsql

var (
	latestOnly bool
	includePre bool
	listLimit  int
)

func NewCmd(injectedApp *application.Bendsql) *cobra.Command {
	app = injectedApp

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List released bendsql versions",
		Long: `List released bendsql versions, newest first.

Queries the GitHub releases API. The pinned default and the currently
installed version (if any) are marked.`,
		Args: cobra.NoArgs,
		RunE: runVersions,
	}

	cmd.Flags().BoolVar(&latestOnly, "latest", false, "print only the latest released version")
	cmd.Flags().BoolVar(&includePre, "pre-release", false, "include the latest pre-release")
	cmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of versions to list")

	return cmd
}

func runVersions(_ *cobra.Command, _ []string) error {
	if latestOnly {
		url := binutils.GetGithubLatestReleaseURL(constants.BendsqlOrg, constants.BendsqlRepoName)
		latest, err := app.Downloader.GetLatestReleaseVersion(url)
		if err != nil {
			return fmt.Errorf("failed to get latest version: %w", err)
		}
		ux.Logger.PrintToUser("%s", latest)
		return nil
	}

	releasesURL := binutils.GetGithubReleasesURL(constants.BendsqlOrg, constants.BendsqlRepoName)

	versions, err := app.Downloader.GetAllReleaseVersions(releasesURL)
	if err != nil {
		return fmt.Errorf("failed to list released versions: %w", err)
	}
	// the API returns newest first, but releases are not guaranteed sorted
	semver.Sort(versions)
	reverse(versions)

	if includePre {
		pre, err := app.Downloader.GetLatestPreReleaseVersion(releasesURL)
		if err != nil {
			return fmt.Errorf("failed to get latest pre-release: %w", err)
		}
		if !contains(versions, pre) {
			versions = append([]string{pre}, versions...)
		}
	}

	if len(versions) > listLimit {
		versions = versions[:listLimit]
	}

	installed := installedVersion()

	table := tablewriter.NewWriter(os.Stdout)
	_ = table.Append([]string{"VERSION", "NOTES"})
	for _, v := range versions {
		_ = table.Append([]string{v, notesFor(v, installed)})
	}
	_ = table.Render()

	return nil
}

// installedVersion returns the semver of the bendsql on PATH, or ""
func installedVersion() string {
	out, err := binutils.InstalledBendsqlVersion()
	if err != nil {
		return ""
	}
	v, err := binutils.ParseBendsqlSemver(out)
	if err != nil {
		return ""
	}
	return v
}

func notesFor(v string, installed string) string {
	notes := []string{}
	if v == constants.DefaultBendsqlVersion {
		notes = append(notes, "default")
	}
	if installed != "" && semver.Compare(v, installed) == 0 {
		notes = append(notes, "installed")
	}
	return strings.Join(notes, ", ")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
