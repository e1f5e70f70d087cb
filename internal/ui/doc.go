// Package ui renders ssv's terminal output.
//
// Colors are ANSI codes so they follow the user's terminal theme:
//
//	ColorSuccess   (green)  - Completed operations
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Warnings and skipped items
//	ColorInfo      (cyan)   - Hosts, paths, fingerprints
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() for monochrome output (--no-color, NO_COLOR, --json).
//
// Spinner shows progress for the one slow step, key generation:
//
//	s := ui.NewSpinner("Generating ed25519 key", os.Stderr)
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
//
// RenderSimpleTable and RenderDoctorTable produce static tables for list
// --long and doctor. Confirm and SelectHost wrap huh prompts; callers must
// only use them on an interactive terminal (see IsInteractive).
package ui
