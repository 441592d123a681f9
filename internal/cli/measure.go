package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/stickerboard/config"
	"github.com/ByLCY/stickerboard/editor"
	"github.com/ByLCY/stickerboard/errs"
)

type measureOpts struct {
	config    string
	fontSize  float64
	maxWidth  float64
	font      string
	fontStyle string
	fontFiles map[string]string
	wrap      string
}

func newMeasureCmd() *cobra.Command {
	var opts measureOpts

	cmd := &cobra.Command{
		Use:   "measure [text]",
		Short: "Fit a bubble around text and print its size",
		Long:  `measure wraps the text the way a new bubble would and prints the bubble size, the text block size and each line. Use \n for explicit line breaks.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeasure(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "config file")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", 0, "font size in units (default: bubble.font_size)")
	cmd.Flags().Float64Var(&opts.maxWidth, "max-width", 0, "wrap width in units (default: bubble.max_width)")
	cmd.Flags().StringVar(&opts.font, "font", "", "font source, embed:<name>, built-in:<name> or a file path (default: font.src)")
	cmd.Flags().StringVar(&opts.fontStyle, "font-style", "", "font style such as bold, italic or medium (default: font.style)")
	cmd.Flags().StringToStringVar(&opts.fontFiles, "font-file", nil, "extra font as name=path, usable as built-in:<name> (repeatable)")
	cmd.Flags().StringVar(&opts.wrap, "wrap", "", "wrap mode: grapheme, word or nowrap (default: bubble.wrap)")

	return cmd
}

func runMeasure(ctx context.Context, text string, opts measureOpts, out io.Writer) error {
	if opts.fontSize < 0 || opts.maxWidth < 0 {
		return errs.New(errs.CodeInvalidInput, "--font-size 与 --max-width 不能为负数")
	}
	cfg, err := config.Resolve(opts.config)
	if err != nil {
		return err
	}
	if opts.fontSize > 0 {
		cfg.Bubble.FontSize = opts.fontSize
	}
	if opts.maxWidth > 0 {
		cfg.Bubble.MaxWidth = opts.maxWidth
	}
	if opts.font != "" {
		cfg.Font.Src = opts.font
	}
	if opts.fontStyle != "" {
		cfg.Font.Style = opts.fontStyle
	}
	if opts.wrap != "" {
		cfg.Bubble.Wrap = opts.wrap
	}
	cfg.Bubble.DefaultText = strings.ReplaceAll(text, `\n`, "\n")

	r, err := newRenderer(cfg, ".", opts.fontFiles)
	if err != nil {
		return err
	}
	s, err := editor.New(editor.Options{Config: cfg, Typesetter: r, Logger: loggerFromContext(ctx)})
	if err != nil {
		return err
	}
	l, ok := s.CurrentBubble()
	if !ok {
		return errs.New(errs.CodeInternal, "初始气泡缺失")
	}
	b, _ := l.Bubble()
	w, h := b.Size()

	printKeyValue(out, "bubble", fmt.Sprintf("%.2f × %.2f", w, h))
	printKeyValue(out, "text", fmt.Sprintf("%.2f × %.2f", b.Text.Width, b.Text.Height))
	font := b.Text.Font
	if b.Text.FontStyle != "" {
		font += " " + b.Text.FontStyle
	}
	printKeyValue(out, "font", fmt.Sprintf("%s size %g", font, b.Text.FontSize))
	printKeyValue(out, "lines", fmt.Sprint(len(b.Text.Lines)))
	for i, ln := range b.Text.Lines {
		fmt.Fprintf(out, "  %s %s %s\n",
			styleNumber.Render(fmt.Sprintf("%2d", i+1)),
			styleValue.Render(fmt.Sprintf("%q", ln.Content)),
			styleDim.Render(fmt.Sprintf("%.2f", ln.Width)))
	}
	return nil
}
