// Package prompt reads secrets and confirmations from the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/marmos91/rowguard/pkg/models"
)

var (
	// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
	ErrAborted = errors.New("aborted")

	// ErrPasswordMismatch indicates passwords don't match.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// IsAborted reports whether err means the user aborted the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Password prompts for a masked password.
func Password(label string) (string, error) {
	prompt := promptui.Prompt{Label: label, Mask: '*'}
	result, err := prompt.Run()
	return result, wrapError(err)
}

// PasswordFromEnv returns the value of env when set, otherwise prompts
// with label. Scripts use the variable; people get the prompt.
func PasswordFromEnv(env, label string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	return Password(label)
}

// NewPassword prompts for a password that satisfies the credential length
// rules, then for its confirmation.
func NewPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if err := models.ValidatePassword(input); err != nil {
				return fmt.Errorf("password must be %d to %d characters", models.MinPasswordLength, models.MaxPasswordLength)
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if err != nil {
		return "", wrapError(err)
	}

	confirm, err := Password("Confirm password")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}
	return password, nil
}

// Confirm asks a yes/no question; only an explicit "y" confirms.
func Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, wrapError(err)
	}
	return true, nil
}
