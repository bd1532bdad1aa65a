package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"github.com/UsamaZuberi/portfolio-v2/internal/observability"
	"github.com/UsamaZuberi/portfolio-v2/internal/portfolio"
	"github.com/UsamaZuberi/portfolio-v2/internal/schemas"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// validateConcurrency bounds parallel reads when several documents are given.
const validateConcurrency = 4

var validateDataCmd = &cobra.Command{
	Use:   "validate-data [file|url]...",
	Short: "Validate data documents against the portfolio schema",
	Long: `Validates one or more portfolio data documents, read from local files or http(s) URLs,
against the embedded JSON schema. With no arguments the bundled document is checked.`,
	RunE: runValidateData,
}

var validateSchemaPath string

func init() {
	validateDataCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Validate against this schema file instead of the embedded one")
	rootCmd.AddCommand(validateDataCmd)
}

// validationReport is the outcome for one document.
type validationReport struct {
	target string
	raw    []byte
	err    error
}

func readDocument(ctx context.Context, target string) ([]byte, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		result, err := fetch.URL(ctx, target, fetch.DefaultOptions())
		if err != nil {
			return nil, err
		}
		return result.Body, nil
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return raw, nil
}

// documentValidator returns the check applied to every document.
func documentValidator() (func([]byte) error, error) {
	if validateSchemaPath == "" {
		return schemas.ValidateDocument, nil
	}
	schema, err := os.ReadFile(validateSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return func(raw []byte) error {
		return schemas.ValidateJSONString(string(schema), string(raw))
	}, nil
}

func runValidateData(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	validate, err := documentValidator()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		err = validate(portfolio.Bundled())
		return reportValidation(cmd, printer, validationReport{target: "bundled", raw: portfolio.Bundled(), err: err})
	}

	reports := make([]validationReport, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(validateConcurrency)
	for i, target := range args {
		g.Go(func() error {
			raw, err := readDocument(ctx, target)
			if err == nil {
				err = validate(raw)
			}
			reports[i] = validationReport{target: target, raw: raw, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, report := range reports {
		if err := reportValidation(cmd, printer, report); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed validation", failed, len(reports))
	}
	return nil
}

// reportValidation prints the outcome for one document and returns its error.
func reportValidation(cmd *cobra.Command, printer *observability.Printer, report validationReport) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", report.target)

	var verr *schemas.ValidationError
	switch {
	case report.err == nil:
		printer.PrintValidationErrors(nil)
		if verbose {
			if doc, err := portfolio.Decode(report.raw); err == nil {
				printer.PrintDocument(doc, report.target)
			}
		}
		return nil
	case errors.As(report.err, &verr):
		printer.PrintValidationErrors(verr)
		return report.err
	default:
		fmt.Fprintf(out, "  ✗ %v\n", report.err)
		return report.err
	}
}
