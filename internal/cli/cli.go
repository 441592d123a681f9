// Package cli implements the stickerboard command-line interface.
//
// The CLI drives the editor the same way the browser UI does: a sticker
// script is replayed against a fresh editor session, then the artboard is
// exported as PNG at one or more of the configured sizes.
//
// # Commands
//
//   - render: run a script and export PNG files
//   - layers: run a script and print the resulting layer list
//   - measure: fit a bubble around a piece of text and print its size
//   - fonts: list the embedded fonts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to context.Context with charmbracelet/log, so packages such as
// upload pick it up through log.FromContext.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the stickerboard CLI with ctx and returns the first command error.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "stickerboard",
		Short:        "stickerboard composes square chat stickers from a script",
		Long:         `stickerboard replays sticker scripts (bubbles, images, decorations, emoji) on a square artboard and exports the result as transparent PNG.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(log.WithContext(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("stickerboard %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newLayersCmd())
	root.AddCommand(newMeasureCmd())
	root.AddCommand(newFontsCmd())

	return root
}

// loggerFromContext 返回 PersistentPreRun 挂到 ctx 上的 logger，没有时返回 log.Default()。
func loggerFromContext(ctx context.Context) *log.Logger {
	return log.FromContext(ctx)
}
