package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLayersCmd() *cobra.Command {
	var opts sessionOpts

	cmd := &cobra.Command{
		Use:   "layers [script]",
		Short: "Run a sticker script and print the layer list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayers(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.data, "data", "", "JSON data bound to ${...} placeholders, or @file")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file")
	cmd.Flags().StringToStringVar(&opts.fontFiles, "font-file", nil, "extra font as name=path, usable as built-in:<name> (repeatable)")

	return cmd
}

func runLayers(ctx context.Context, path string, opts sessionOpts, out io.Writer) error {
	l, err := loadScript(ctx, path, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, styleTitle.Render(fmt.Sprintf("%s %s", l.result.Name, l.result.Version)))
	printLayers(out, l.session.LayerList())
	return nil
}
