package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/gomeasure/pkg/format"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
)

var convertPower int

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from> [to]",
	Short: "Convert a length, area or volume between units",
	Long: `Convert a value between length units. Without a target unit the value is
printed in every known unit. Use --power 2 for areas and --power 3 for volumes.
Feet accept feet-inches notation such as 10'6".`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runConvert,
}

var feetCmd = &cobra.Command{
	Use:   "feet <value>",
	Short: "Convert between decimal feet and feet-inches",
	Long: `Print decimal feet as feet-inches (10.5 -> 10'6") and feet-inches as
decimal feet (10'6" -> 10.5).`,
	Args: cobra.ExactArgs(1),
	RunE: runFeet,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(feetCmd)

	convertCmd.Flags().IntVar(&convertPower, "power", 1, "dimension of the value: 1 length, 2 area, 3 volume")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertPower < 1 || convertPower > 3 {
		return fmt.Errorf("--power must be 1, 2 or 3, got %d", convertPower)
	}

	from, err := units.ParseUnit(args[1])
	if err != nil {
		return err
	}
	value, ok := format.ParseDistance(args[0], from)
	if !ok {
		return fmt.Errorf("invalid value %q", args[0])
	}

	decimals := cfg.Display.Decimals
	out := cmd.OutOrStdout()

	if len(args) == 3 {
		to, err := units.ParseUnit(args[2])
		if err != nil {
			return err
		}
		result, err := units.ConvertPower(value, from, to, convertPower)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", format.Measurement(result, decimals), powerLabel(to, convertPower))
		return nil
	}

	all, err := units.AllConversionsPower(value, from, convertPower)
	if err != nil {
		return err
	}
	for _, line := range format.Conversions(all, decimals) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runFeet(cmd *cobra.Command, args []string) error {
	input := strings.TrimSpace(args[0])
	if v, err := strconv.ParseFloat(input, 64); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), format.FeetInches(v))
		return nil
	}

	feet, ok := format.ParseFeetInches(input)
	if !ok {
		return fmt.Errorf("invalid feet-inches value %q", input)
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.Measurement(feet, cfg.Display.Decimals))
	return nil
}

func powerLabel(u units.Unit, power int) string {
	switch power {
	case 2:
		return string(u) + "²"
	case 3:
		return string(u) + "³"
	}
	return string(u)
}
