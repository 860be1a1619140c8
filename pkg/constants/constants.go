// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import (
	"time"
)

const (
	DefaultPerms755    = 0o755
	WriteReadReadPerms = 0o644

	BaseDirName  = ".setup-bendsql"
	LogDir       = "logs"
	DownloadsDir = "downloads"

	LogFileName = "setup-bendsql.log"

	// Release coordinates
	BendsqlOrg      = "databendlabs"
	BendsqlRepoName = "bendsql"
	BendsqlBinName  = "bendsql"

	// this matches the version pinned by the original setup step
	DefaultBendsqlVersion = "v0.9.5"
	MinBendsqlVersion     = "v0.9.0"

	DefaultInstallDir = "/usr/local/bin"

	// Download behavior
	DownloadRetryCount = 3
	DownloadRetryWait  = 2 * time.Second
	RequestTimeout     = 3 * time.Minute
	APIRequestTimeout  = 30 * time.Second
	ProbeTimeout       = 10 * time.Second
	InstallTimeout     = 2 * time.Minute

	// Config file
	DefaultConfigFileName = "config"
	DefaultConfigFileType = "json"

	// Config keys
	ConfigVersionKey    = "version"
	ConfigInstallDirKey = "install-dir"

	// Env vars
	EnvBendsqlVersion = "BENDSQL_VERSION"
	EnvInstallDir     = "BENDSQL_INSTALL_DIR"
)
