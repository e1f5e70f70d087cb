package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/ssv/internal/doctor"
	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/paths"
	"github.com/rileyhilliard/ssv/internal/ui"
	"github.com/spf13/cobra"
)

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func newDoctorCmd(g *globalOptions) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the ~/.ssh layout for problems",
		Long: `Diagnose the managed layout: directory and key permissions, the key
generator, orphaned keys, fragments pointing at missing keys, and whether
~/.ssh/config includes the fragments.

Exits non-zero when any check fails.

Examples:
  ssv doctor
  ssv doctor --fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, g, fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "attempt automatic fixes where possible")
	return cmd
}

func runDoctor(cmd *cobra.Command, g *globalOptions, fix bool) error {
	settings, err := loadSettings(g, nil)
	if err != nil {
		return err
	}
	resolver, err := paths.New(settings.Home)
	if err != nil {
		return err
	}

	checks := doctor.Checks(resolver, settings)
	results := doctor.RunAllParallel(checks)

	var fixErr error
	if fix {
		results, fixErr = doctor.FixAll(checks, results)
	}

	out := cmd.OutOrStdout()
	if g.json {
		if err := WriteJSONSuccess(out, doctorOutput(checks, results)); err != nil {
			return err
		}
	} else {
		renderDoctorText(out, checks, results, fix)
	}

	if fixErr != nil {
		return errors.WrapWithCode(fixErr, errors.ErrIO,
			"Some fixes could not be applied",
			"Fix the remaining issues by hand, then run 'ssv doctor' again")
	}
	if doctor.HasFailures(results) {
		return errors.New(errors.ErrValidation,
			doctor.Summary(results),
			"See the report above for what to change")
	}
	return nil
}

func doctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := make(map[string][]doctor.CheckResult)
	var order []string

	for i, check := range checks {
		cat := check.Category()
		if _, exists := grouped[cat]; !exists {
			order = append(order, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(order))}
	for _, cat := range order {
		output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

func renderDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	rows := make([]ui.DoctorCheckRow, len(results))
	for i, r := range results {
		rows[i] = ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   checks[i].Category(),
			Message:    r.Message,
			Suggestion: r.Suggestion,
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.BoldStyle().Render("ssv diagnostic report"))
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderDoctorTable(rows))
	fmt.Fprintln(w, ui.MutedStyle().Render(strings.Repeat("━", 60)))

	if !doctor.HasIssues(results) {
		ui.PrintSuccess(w, "%s", doctor.Summary(results))
		return
	}

	fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
	if doctor.FixableCount(results) > 0 && !fixed {
		fmt.Fprintf(w, "\n  Run with %s to attempt automatic fixes where possible.\n",
			ui.MutedStyle().Render("--fix"))
	}
}
