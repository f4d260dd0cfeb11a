package main

import (
	"fmt"
	"strconv"

	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
)

var unitsSystem string

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the supported units",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := make([]units.Info, 0, len(units.All()))
		if unitsSystem != "" {
			system, err := units.ParseSystem(unitsSystem)
			if err != nil {
				return err
			}
			infos = units.UnitsForSystem(system)
		} else {
			for _, u := range units.All() {
				info, err := u.Info()
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
		}

		rows := make([][]string, len(infos))
		for i, info := range infos {
			rows[i] = []string{string(info.Unit), info.Name, string(info.System), strconv.FormatFloat(info.Meters, 'g', -1, 64)}
		}
		printTable(cmd.OutOrStdout(), []string{"Unit", "Name", "System", "Meters"}, rows)
		return nil
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the known drawing scales",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		presets := calibration.Presets()
		rows := make([][]string, len(presets))
		for i, p := range presets {
			rows[i] = []string{p.Name, fmt.Sprintf("1:%g", p.Ratio)}
		}
		printTable(cmd.OutOrStdout(), []string{"Scale", "Ratio"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(presetsCmd)

	unitsCmd.Flags().StringVar(&unitsSystem, "system", "", "only list units of this system (metric or imperial)")
}
