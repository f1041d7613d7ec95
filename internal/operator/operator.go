// Package operator holds the console prompts that hand control to the human
// driving the scan: login, duration preference and paging.
package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spigell/junior-hunter/internal/filtering"
)

const (
	PromptContinue = "Continue with the next page"
	PromptStop     = "Stop"
)

var durationItems = []string{string(filtering.PreferFour), string(filtering.PreferEight), string(filtering.PreferAny)}

type selectRunner interface {
	Run() (int, string, error)
}

type promptRunner interface {
	Run() (string, error)
}

// Console asks the operator through promptui.
type Console struct {
	newSelect func(label string, items []string) selectRunner
	newPrompt func(label string) promptRunner
}

func NewConsole() *Console {
	return &Console{
		newSelect: func(label string, items []string) selectRunner {
			return &promptui.Select{Label: label, Items: items}
		},
		newPrompt: func(label string) promptRunner {
			return &promptui.Prompt{Label: label}
		},
	}
}

// WaitForLogin blocks until the operator confirms the browser session is
// logged in and showing the search results.
func (c *Console) WaitForLogin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.newPrompt("Log in and open the search results in the browser, then press Enter").Run()
	if err != nil {
		return fmt.Errorf("login hand-off: %w", err)
	}
	return ctx.Err()
}

// DurationPreference asks for the preferred work term length.
func (c *Console) DurationPreference(ctx context.Context) (filtering.Preference, error) {
	if err := ctx.Err(); err != nil {
		return filtering.PreferAny, err
	}
	_, choice, err := c.newSelect("Preferred work term length (months)", durationItems).Run()
	if err != nil {
		return filtering.PreferAny, fmt.Errorf("duration preference: %w", err)
	}
	return filtering.ParsePreference(choice), nil
}

// NextPage asks whether to scan another page after the operator navigated
// to it manually. An interrupted prompt means stop.
func (c *Console) NextPage(ctx context.Context, scanned int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	label := fmt.Sprintf("Page %d done. Navigate to the next results page, then choose", scanned)
	_, choice, err := c.newSelect(label, []string{PromptContinue, PromptStop}).Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("page prompt: %w", err)
	}
	return choice == PromptContinue, nil
}

// SinglePage never asks and stops after the first page.
type SinglePage struct{}

func (SinglePage) NextPage(context.Context, int) (bool, error) { return false, nil }
