package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/scene"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	sessionOpts
	sizes  []int  // export sizes, overrides the script's export section
	outDir string // output directory
	debug  string // optional scene debug JSON path
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{outDir: "."}

	cmd := &cobra.Command{
		Use:   "render [script]",
		Short: "Run a sticker script and export the artboard as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntSliceVarP(&opts.sizes, "size", "s", nil, "export size(s) in pixels, repeatable (default: script export section, then export.default_size)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", opts.outDir, "output directory")
	cmd.Flags().StringVar(&opts.data, "data", "", "JSON data bound to ${...} placeholders, or @file")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default: $STICKERBOARD_CONFIG_DIR/config.toml)")
	cmd.Flags().StringVar(&opts.debug, "debug", "", "write the scene as JSON to this path")
	cmd.Flags().StringToStringVar(&opts.fontFiles, "font-file", nil, "extra font as name=path, usable as built-in:<name> (repeatable)")

	return cmd
}

func runRender(ctx context.Context, path string, opts *renderOpts, out io.Writer) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	l, err := loadScript(ctx, path, opts.sessionOpts)
	if err != nil {
		return err
	}

	sizes, err := exportSizes(opts.sizes, l.result.Exports, l.cfg.Export.DefaultSize, l.cfg.AllowsSize)
	if err != nil {
		return err
	}
	logger.Debug("export sizes", "sizes", sizes)

	if opts.debug != "" {
		if err := writeDebug(l.session.Scene(), opts.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	for _, size := range sizes {
		res, err := l.session.Export(l.renderer, size)
		if err != nil {
			return fmt.Errorf("导出 %dpx 失败: %w", size, err)
		}
		target := filepath.Join(opts.outDir, res.Filename)
		if err := os.WriteFile(target, res.Data, 0o644); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", target, err)
		}
		printFile(out, target)
	}
	printSuccess(out, "%s %s: %d file(s)", l.result.Name, l.result.Version, len(sizes))
	prog.done(fmt.Sprintf("Exported %d file(s)", len(sizes)))
	return nil
}

// exportSizes 决定导出尺寸：命令行优先，其次脚本 export 段，最后是默认尺寸。结果去重且保持顺序。
func exportSizes(flags, script []int, def int, allowed func(int) bool) ([]int, error) {
	src := flags
	if len(src) == 0 {
		src = script
	}
	if len(src) == 0 {
		src = []int{def}
	}
	var out []int
	for _, s := range src {
		if !allowed(s) {
			return nil, errs.New(errs.CodeInvalidSize, "不支持的导出尺寸 %d", s)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func writeDebug(s *scene.Scene, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := scene.WriteDebugJSON(s, path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
