package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gomeasure/internal/config"
	"github.com/philipparndt/gomeasure/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "gomeasure",
	Short: "Calibrated measurements on scaled drawings",
	Long: `gomeasure turns pixel coordinates on scaled drawings into real-world
measurements. Calibrate with a reference line, a drawing scale or a known
resolution, then measure distances, paths, areas, cutouts, volumes, angles,
circles, slopes and counts.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $"+config.EnvConfigPath+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
