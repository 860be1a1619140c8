// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/hantmac/setup-bendsql/pkg/constants"
)

// runCommand is a variable for testing purposes to allow faking the
// package manager invocation
var runCommand = func(cmd *exec.Cmd) error {
	return cmd.Run()
}

// InstallDebPackage installs a downloaded .deb through dpkg, going
// through sudo when not running as root. Placement of the binary is
// left to the package manager.
func InstallDebPackage(pkgPath string) error {
	if _, err := exec.LookPath("dpkg"); err != nil {
		return fmt.Errorf("dpkg not found on PATH, cannot install deb package: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.InstallTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if os.Geteuid() == 0 {
		cmd = exec.CommandContext(ctx, "dpkg", "-i", pkgPath)
	} else {
		cmd = exec.CommandContext(ctx, "sudo", "dpkg", "-i", pkgPath)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := runCommand(cmd); err != nil {
		return fmt.Errorf("failed to install %s: %w", pkgPath, err)
	}
	return nil
}
