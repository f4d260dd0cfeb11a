package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/philipparndt/gomeasure/pkg/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <script.yaml>",
	Short: "Re-run a measurement script whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchScript(ctx, cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&runOutput, "output", "o", "table", "output format: table, json or yaml")
	watchCmd.Flags().BoolVar(&runSummary, "summary", false, "print per-type totals after the records")
}

// watchScript runs the script once and again after every change until ctx is done
func watchScript(ctx context.Context, w io.Writer, path string) error {
	rerun := func() {
		if err := runScript(w, path); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	changes := make(chan struct{}, 1)
	if err := fw.Watch([]string{path}, func(string) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	fw.Start(ctx)

	rerun()
	log.Printf("Watching %s for changes (Ctrl+C to stop)", strings.Join(fw.Files(), ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Printf("%s changed, re-running", path)
			fmt.Fprintln(w)
			rerun()
		}
	}
}
