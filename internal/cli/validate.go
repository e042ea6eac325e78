package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ghostrap/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	Path   string   `json:"path"`
	Name   string   `json:"name,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenario files without running them",
		Long: `Check scenario files against the scenario schema and the
cross-field rules (known listeners, required keys, assertion events)
without running any step.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		out.VerboseLog("Validating %s", path)
		fv := FileValidation{Path: path, Valid: true}

		scenario, err := harness.LoadScenario(path)
		if err != nil {
			fv.Valid = false
			fv.Errors = validationMessages(err)
			result.Valid = false
		} else {
			fv.Name = scenario.Name
		}
		result.Files = append(result.Files, fv)
	}

	if out.JSON() {
		var failure *CLIError
		if !result.Valid {
			failure = &CLIError{Code: ErrCodeInvalid, Message: "one or more scenarios are invalid"}
		}
		if err := out.Respond(result, failure); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				out.Printf("✓ %s (%s)\n", fv.Path, fv.Name)
				continue
			}
			out.Printf("✗ %s\n", fv.Path)
			for _, msg := range fv.Errors {
				out.Printf("  %s\n", msg)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "one or more scenarios are invalid")
	}
	return nil
}

// validationMessages flattens schema errors into one message per problem.
func validationMessages(err error) []string {
	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		msgs := make([]string, len(schemaErr.Messages))
		for i, m := range schemaErr.Messages {
			msgs[i] = fmt.Sprintf("schema: %s", m)
		}
		return msgs
	}
	return []string{err.Error()}
}
