// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/mod/semver"
)

const (
	Yes = "Yes"
	No  = "No"

	// EnvNonInteractive disables all prompting when set to a non-empty value
	EnvNonInteractive = "SETUP_BENDSQL_NON_INTERACTIVE"
)

var ErrNonInteractive = errors.New("prompting is disabled in non-interactive mode")

// promptUIRunner is a variable for testing purposes to allow mocking prompt.Run()
var promptUIRunner = func(prompt promptui.Prompt) (string, error) {
	return prompt.Run()
}

// promptUISelectRunner is a variable for testing purposes to allow mocking select.Run()
var promptUISelectRunner = func(sel promptui.Select) (int, string, error) {
	return sel.Run()
}

type Prompter interface {
	CaptureYesNo(promptStr string) (bool, error)
	CaptureVersion(promptStr string) (string, error)
}

type realPrompter struct{}

// noOpPrompter fails every capture; used when prompting is disabled
type noOpPrompter struct{}

var (
	_ Prompter = (*realPrompter)(nil)
	_ Prompter = (*noOpPrompter)(nil)
)

func NewPrompter() Prompter {
	return &realPrompter{}
}

// NewPrompterForMode returns a prompter honoring the non-interactive mode
func NewPrompterForMode(nonInteractive bool) Prompter {
	if nonInteractive || !IsInteractive() {
		return &noOpPrompter{}
	}
	return &realPrompter{}
}

// IsInteractive reports whether prompting is allowed. CI=1 or the
// non-interactive env var force-disable it.
func IsInteractive() bool {
	if os.Getenv(EnvNonInteractive) != "" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return true
}

func (*realPrompter) CaptureYesNo(promptStr string) (bool, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: []string{Yes, No},
	}

	_, decision, err := promptUISelectRunner(prompt)
	if err != nil {
		return false, err
	}
	return decision == Yes, nil
}

func (*realPrompter) CaptureVersion(promptStr string) (string, error) {
	prompt := promptui.Prompt{
		Label: promptStr,
		Validate: func(input string) error {
			if !semver.IsValid(input) {
				return fmt.Errorf("version must be a legal semantic version (ex: v1.1.1)")
			}
			return nil
		},
	}

	return promptUIRunner(prompt)
}

func (*noOpPrompter) CaptureYesNo(string) (bool, error) {
	return false, ErrNonInteractive
}

func (*noOpPrompter) CaptureVersion(string) (string, error) {
	return "", ErrNonInteractive
}
