package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Confirm asks a yes/no question. It returns false if the user declines or
// aborts the prompt.
func Confirm(title, description string) (bool, error) {
	var confirm bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirm),
		),
	).Run()
	if err == huh.ErrUserAborted {
		return false, nil
	}
	return confirm, err
}

// SelectHost lets the user pick one of hosts. An aborted prompt returns "".
func SelectHost(title string, hosts []string) (string, error) {
	options := make([]huh.Option[string], len(hosts))
	for i, h := range hosts {
		options[i] = huh.NewOption(h, h)
	}

	var name string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&name),
		),
	).Run()
	if err == huh.ErrUserAborted {
		return "", nil
	}
	return name, err
}
