// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"path/filepath"

	"github.com/hantmac/setup-bendsql/pkg/config"
	"github.com/hantmac/setup-bendsql/pkg/constants"
	"github.com/hantmac/setup-bendsql/pkg/prompts"
	"go.uber.org/zap"
)

type Bendsql struct {
	Log        *zap.SugaredLogger
	baseDir    string
	Conf       *config.Config
	Prompt     prompts.Prompter
	Downloader Downloader
}

func New() *Bendsql {
	return &Bendsql{}
}

func (app *Bendsql) Setup(baseDir string, log *zap.SugaredLogger, conf *config.Config, prompt prompts.Prompter, downloader Downloader) {
	app.baseDir = baseDir
	app.Log = log
	app.Conf = conf
	app.Prompt = prompt
	app.Downloader = downloader
}

func (app *Bendsql) GetBaseDir() string {
	return app.baseDir
}

func (app *Bendsql) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

// GetDownloadsDir returns the scratch dir download artifacts land in
// before installation.
func (app *Bendsql) GetDownloadsDir() string {
	return filepath.Join(app.baseDir, constants.DownloadsDir)
}

func (app *Bendsql) GetDownloader() Downloader {
	return app.Downloader
}
