package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/stickerboard/fonts"
)

func newFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the embedded fonts usable as embed:<name>",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range fonts.Names() {
				line := styleValue.Render("embed:" + name)
				if name == fonts.Default {
					line += " " + styleDim.Render("(default)")
				}
				fmt.Fprintln(out, line)
			}
		},
	}
}
