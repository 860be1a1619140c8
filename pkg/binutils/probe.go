// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hantmac/setup-bendsql/pkg/constants"
)

// FindBendsql resolves the bendsql binary through PATH.
func FindBendsql() (string, error) {
	return exec.LookPath(constants.BendsqlBinName)
}

// BendsqlVersionOutput invokes the binary at binPath with --version and
// returns its trimmed output. A non-zero exit means the tool is missing
// or broken; that is the signal to install, not an error to report.
func BendsqlVersionOutput(binPath string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binPath, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", binPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// InstalledBendsqlVersion probes for a functional bendsql on PATH and
// returns its version output. Any successful invocation is accepted; no
// minimum version is enforced here.
func InstalledBendsqlVersion() (string, error) {
	binPath, err := FindBendsql()
	if err != nil {
		return "", err
	}
	return BendsqlVersionOutput(binPath)
}

// ParseBendsqlSemver extracts a semver tag (v-prefixed) from bendsql's
// version output, e.g. "bendsql 0.9.5" -> "v0.9.5".
func ParseBendsqlSemver(versionOutput string) (string, error) {
	fields := strings.Fields(versionOutput)
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected version output: %q", versionOutput)
	}
	v := fields[1]
	// strip any build metadata suffix such as 0.9.5-homebrew
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v, nil
}
