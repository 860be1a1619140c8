// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package checkcmd

import (
	"fmt"

	"github.com/hantmac/setup-bendsql/pkg/application"
	"github.com/hantmac/setup-bendsql/pkg/binutils"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/ux"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

var app *application.Bendsql

func NewCmd(injectedApp *application.Bendsql) *cobra.Command {
	app = injectedApp

	return &cobra.Command{
		Use:   "check",
		Short: "Probe for an installed, functional bendsql",
		Long: `Probe for an installed, functional bendsql.

Runs bendsql --version and reports the result. Exits non-zero when the
binary is missing or broken, so the command can gate follow-up steps in
automation.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(_ *cobra.Command, _ []string) error {
	binPath, err := binutils.FindBendsql()
	if err != nil {
		ux.Logger.RedXToUser("%s not found on PATH", constants.BendsqlBinName)
		return fmt.Errorf("%s is not installed", constants.BendsqlBinName)
	}

	versionOut, err := binutils.BendsqlVersionOutput(binPath)
	if err != nil {
		ux.Logger.RedXToUser("%s found at %s but not functional", constants.BendsqlBinName, binPath)
		return err
	}

	ux.Logger.GreenCheckmarkToUser("%s (%s)", versionOut, binPath)

	if installed, err := binutils.ParseBendsqlSemver(versionOut); err == nil {
		if semver.Compare(installed, constants.MinBendsqlVersion) < 0 {
			ux.Logger.PrintToUser("Warning: installed version %s is older than the minimum supported %s; consider 'setup-bendsql install --latest --force'",
				installed, constants.MinBendsqlVersion)
		}
	} else {
		app.Log.Debugw("could not parse installed version", "output", versionOut, "error", err)
	}

	return nil
}
