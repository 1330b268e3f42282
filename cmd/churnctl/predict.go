package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/churnboard/internal/adapters/model"
	app "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/logger"
)

func newPredictCmd(root *rootOptions) *cobra.Command {
	in := employee.DefaultInput()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one employee offline with the configured dataset and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := in.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := root.cfg

			svc := app.New(
				app.WithLogger(logger.Named("service")),
				app.WithDatasetPath(cfg.DatasetPath),
				app.WithModel(model.Options{
					Path:            cfg.ModelPath,
					Format:          cfg.ModelFormat,
					ONNXLibraryPath: cfg.ONNXLibraryPath,
				}),
				app.WithKDEGridSize(cfg.KDEGridSize),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			out, err := svc.Predict(ctx, in)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&in.SatisfactionLevel, "satisfaction", in.SatisfactionLevel, "satisfaction level, 0 to 1")
	f.Float64Var(&in.LastEvaluation, "evaluation", in.LastEvaluation, "last evaluation, 0 to 1")
	f.IntVar(&in.NumberProject, "projects", in.NumberProject, "number of projects")
	f.IntVar(&in.AverageMonthlyHours, "hours", in.AverageMonthlyHours, "average monthly hours")
	f.IntVar(&in.TimeSpendCompany, "years", in.TimeSpendCompany, "years at company")
	f.IntVar(&in.WorkAccident, "accident", in.WorkAccident, "work accident, 0 or 1")
	f.IntVar(&in.PromotionLast5Years, "promotion", in.PromotionLast5Years, "promotion in last 5 years, 0 or 1")
	f.StringVar(&in.Salary, "salary", in.Salary, "salary level: low, medium or high")
	f.BoolVar(&asJSON, "json", false, "print the full outcome as JSON")
	return cmd
}

func printOutcome(w io.Writer, out app.Outcome) {
	verdict := color.New(color.FgGreen, color.Bold)
	if out.Label == predict.Churned {
		verdict = color.New(color.FgRed, color.Bold)
	}
	fmt.Fprint(w, "The predicted churn result is: ")
	verdict.Fprintln(w, out.Verdict)
	fmt.Fprintln(w)

	inputs := tablewriter.NewWriter(w)
	inputs.SetHeader([]string{"feature", "value"})
	inputs.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, name := range features.Columns {
		inputs.Append([]string{name, strconv.FormatFloat(out.Features[i], 'g', -1, 64)})
	}
	inputs.Render()
	fmt.Fprintln(w)

	ins := out.Insight
	color.New(color.Bold).Fprintln(w, ins.Heading)
	fmt.Fprintf(w, "%d historical employees share this outcome.\n\n", ins.SubsetSize)

	projects := tablewriter.NewWriter(w)
	projects.SetCaption(true, ins.Projects.Title)
	projects.SetHeader([]string{"number_project", "employees"})
	for _, c := range ins.Projects.Categories {
		projects.Append([]string{strconv.Itoa(c.Value), strconv.Itoa(c.Count)})
	}
	projects.Render()
	fmt.Fprintln(w)

	color.New(color.Bold).Fprintln(w, ins.Narrative.Title)
	for _, p := range ins.Narrative.Points {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
