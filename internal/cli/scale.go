package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// scaleCommand prints the unit, window and ruler chosen for a set of heights.
func (c *CLI) scaleCommand() *cobra.Command {
	var (
		modeStr string
		majors  bool
	)

	cmd := &cobra.Command{
		Use:   "scale [height...]",
		Short: "Show the display unit and ruler for some heights",
		Long: `Show the display unit, window and ruler marks a chart of these heights
would use. Heights accept cm, m, km, in, ft and feet/inch forms such as 5'11".`,
		Example: `  heightcompare scale 175 "6'2" 1.6m
  heightcompare scale 30m 120m --majors
  heightcompare scale 180 --mode ft`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := units.ParseMode(modeStr)
			if err != nil {
				return err
			}
			heights := make([]float64, len(args))
			for i, a := range args {
				h, err := units.ParseHeight(a)
				if err != nil {
					return err
				}
				heights[i] = h
			}
			res := scale.SelectDisplay(heights, mode)
			marks := ruler.Generate(res.Range, res.Unit)
			if majors {
				marks = ruler.Majors(marks)
			}
			printResolution(res, len(heights))
			printMarks(marks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeStr, "mode", "m", "auto", "unit mode: auto, cm, ft")
	cmd.Flags().BoolVar(&majors, "majors", false, "only show major marks")

	return cmd
}

func printResolution(res scale.Resolution, n int) {
	printKeyValue("Unit", res.Unit.String())
	printKeyValue("Window", fmt.Sprintf("%s to %s",
		units.FormatHeight(res.Range.Min, res.Unit), units.FormatHeight(res.Range.Max, res.Unit)))
	printKeyValue("Heights", fmt.Sprintf("%d", n))
}

func printMarks(marks []ruler.Mark) {
	t := newTable("Position", "Label", "Secondary", "Major")
	for i := len(marks) - 1; i >= 0; i-- {
		m := marks[i]
		major := ""
		if m.IsMajor {
			major = iconSuccess
		}
		t.Row(units.FormatCm(m.PositionCm), m.PrimaryLabel, m.SecondaryLabel, major)
	}
	fmt.Fprintln(stdout, t.Render())
}
