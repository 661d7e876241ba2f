package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/handlers"
	"github.com/giygas/compatibility-api/validation"
	"github.com/spf13/cobra"
)

func newQueryCommand(opts *options) *cobra.Command {
	var diluent string

	cmd := &cobra.Command{
		Use:   "query <drug> <drug> [drug]",
		Short: "Look up the compatibility of 2 or 3 drugs",
		Args:  cobra.RangeArgs(compat.MinDrugs, compat.MaxDrugs),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator := validation.NewDataValidator()
			for _, d := range args {
				if strings.TrimSpace(d) == "" {
					continue
				}
				if err := validator.ValidateDrugName(d); err != nil {
					return err
				}
			}
			if diluent != "" {
				if err := validator.ValidateDiluent(diluent); err != nil {
					return err
				}
			}

			index, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			result, err := index.Query(args)
			if err != nil {
				return err
			}
			if diluent != "" && !result.Overridden {
				result.Summaries = compat.FilterDiluent(result.Summaries, diluent)
			}

			printResult(cmd.OutOrStdout(), handlers.AssembleResult(index, result, diluent))
			return nil
		},
	}

	cmd.Flags().StringVar(&diluent, "diluent", "", "Only show results for this diluent (exact name)")
	return cmd
}

func printResult(w io.Writer, resp handlers.CompatibilityResponse) {
	printHeading(w, "%s", resp.Key)

	switch resp.Status {
	case handlers.StatusOverride:
		printWarning(w, "Two or more drugs share the %s class, combination not recommended", resp.OverrideClass)
	case handlers.StatusNoData:
		printInfo(w, "No published compatibility data")
	}

	for _, r := range resp.Results {
		label := r.Label
		if label == "" {
			label = "classification " + r.Classification
		}

		diluent := r.Diluent
		if diluent == "" {
			diluent = "any diluent"
		}

		fmt.Fprintf(w, "  %-28s ", diluent)
		classificationColor(r.Classification).Fprintf(w, "[%s] %s\n", r.Classification, label)

		for _, q := range r.Qualifiers {
			mutedColor.Fprintf(w, "      %s %s\n", q.Code, q.Description)
		}
		for _, ref := range r.References {
			mutedColor.Fprintf(w, "      ref %s: %s\n", ref.ID, ref.Citation)
		}
	}
}

func newLegendCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Print the classification and qualifier legends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			legend := handlers.AssembleLegend(index)

			printHeading(w, "Classifications")
			for _, c := range legend.Classifications {
				classificationColor(c.Code).Fprintf(w, "  [%s] %s", c.Code, c.Label)
				fmt.Fprintf(w, "  %s\n", c.Description)
			}

			printHeading(w, "Qualifiers")
			for _, q := range legend.Qualifiers {
				fmt.Fprintf(w, "  %-6s %s\n", q.Code, q.Description)
			}
			return nil
		},
	}
}

func newReportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Check the dataset and legends for integrity defects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			report := validation.NewDataValidator().ReportDataQuality(index)
			stats := report.Stats

			printHeading(w, "Dataset %s", index.Version())
			fmt.Fprintf(w, "  rows %d, loaded %d, skipped %d without two drugs, %d without a usable classification\n",
				stats.Rows, stats.Loaded, stats.SkippedMissingDrugs, stats.SkippedClassification)
			fmt.Fprintf(w, "  %d drug classes, override checks %v\n", index.DrugClassCount(), index.FlaggedClasses())

			printList(w, "Classifications without legend", report.ClassificationsWithoutLegend)
			printList(w, "Unknown classifications", report.UnknownClassifications)
			printList(w, "Qualifiers without legend", report.QualifiersWithoutLegend)
			printList(w, "References without citation", report.ReferencesWithoutCitation)
			printList(w, "Classified drugs absent from the dataset", report.ClassifiedDrugsNotInDataset)
			if report.DuplicateRows > 0 {
				printWarning(w, "Duplicate rows (%d)", report.DuplicateRows)
			}

			return nil
		},
	}
}
