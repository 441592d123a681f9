package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/stickerboard/errs"
	"github.com/ByLCY/stickerboard/fonts"
)

const testScript = `
sticker Hello v1 {
  layers {
    bubble greet { "Hi ${user.name}" }
    deco badge type heart color #ff6699
  }
  actions {
    select greet
  }
  export 512
}
`

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STICKERBOARD_CONFIG_DIR", t.TempDir())
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.sticker")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestSetVersion(t *testing.T) {
	t.Cleanup(func() { SetVersion("dev", "", "") })
	SetVersion("1.0.0", "abc123", "2024-01-01")
	assert.Equal(t, "1.0.0", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2024-01-01", date)

	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "stickerboard 1.0.0")
	assert.Contains(t, out, "commit: abc123")
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Exported 2 file(s)")
	assert.Contains(t, buf.String(), "Exported 2 file(s) (")
}

func TestLoggerFromContext(t *testing.T) {
	l := newLogger(io.Discard, log.DebugLevel)
	ctx := log.WithContext(context.Background(), l)
	assert.Same(t, l, loggerFromContext(ctx))
	assert.NotNil(t, loggerFromContext(context.Background()))
}

func TestExportSizes(t *testing.T) {
	allowed := func(s int) bool { return s == 512 || s == 1024 || s == 2048 }
	tests := []struct {
		name   string
		flags  []int
		script []int
		want   []int
		bad    bool
	}{
		{name: "flags win", flags: []int{2048}, script: []int{512}, want: []int{2048}},
		{name: "script next", script: []int{1024, 512}, want: []int{1024, 512}},
		{name: "default last", want: []int{512}},
		{name: "dedupe", flags: []int{512, 1024, 512}, want: []int{512, 1024}},
		{name: "not allowed", flags: []int{300}, bad: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportSizes(tt.flags, tt.script, 512, allowed)
			if tt.bad {
				assert.True(t, errs.Is(err, errs.CodeInvalidSize))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseData(t *testing.T) {
	v, err := parseData("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseData(`{"user": {"name": "Mika"}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"user": map[string]any{"name": "Mika"}}, v)

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n": 1}`), 0o644))
	v, err = parseData("@" + path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 1.0}, v)

	_, err = parseData("{broken")
	assert.Error(t, err)
	_, err = parseData("@" + filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	script := writeScript(t, testScript)
	outDir := t.TempDir()
	debug := filepath.Join(outDir, "debug", "scene.json")

	out, err := run(t, "render", script, "--out", outDir, "--data", `{"user":{"name":"Mika"}}`, "--debug", debug)
	require.NoError(t, err)

	target := filepath.Join(outDir, "vrc_sticker_512.png")
	assert.Contains(t, out, target)
	assert.Contains(t, out, "Hello v1: 1 file(s)")

	img, err := imaging.Open(target)
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
	_, _, _, a := img.At(2, 2).RGBA()
	assert.Zero(t, a, "corner outside every layer stays transparent")

	raw, err := os.ReadFile(debug)
	require.NoError(t, err)
	var layers []map[string]any
	require.NoError(t, json.Unmarshal(raw, &layers))
	assert.Len(t, layers, 9, "6 overlays, initial bubble, greet, badge")
}

func TestRenderSizeFlag(t *testing.T) {
	script := writeScript(t, testScript)
	outDir := t.TempDir()

	_, err := run(t, "render", script, "-o", outDir, "-s", "1024", "-s", "512")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "vrc_sticker_1024.png"))
	assert.FileExists(t, filepath.Join(outDir, "vrc_sticker_512.png"))

	_, err = run(t, "render", script, "-o", outDir, "--size", "300")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeInvalidSize))
}

func TestRenderCommandErrors(t *testing.T) {
	_, err := run(t, "render", filepath.Join(t.TempDir(), "missing.sticker"))
	assert.Error(t, err)

	_, err = run(t, "render", writeScript(t, `doc X v1 { }`))
	assert.ErrorContains(t, err, "解析脚本失败")

	_, err = run(t, "render", writeScript(t, `sticker X v1 { actions { select nobody } }`))
	assert.True(t, errs.Is(err, errs.CodeNotFound))

	_, err = run(t, "render")
	assert.Error(t, err, "script argument is required")
}

func TestRenderWithConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[export]
sizes = [256]
default_size = 256
filename = "out_%d.png"
`), 0o644))
	outDir := t.TempDir()

	_, err := run(t, "render", writeScript(t, `sticker C v1 { }`), "--config", cfgPath, "-o", outDir)
	require.NoError(t, err)
	img, err := imaging.Open(filepath.Join(outDir, "out_256.png"))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestLayersCommand(t *testing.T) {
	out, err := run(t, "layers", writeScript(t, testScript), "--data", `{"user":{"name":"Mika"}}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello v1")
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "💬 Hi Mika")
	assert.Contains(t, out, "♥ Heart")
	assert.Contains(t, out, "#ff6699")
	assert.Contains(t, out, iconActive, "selected layer is marked")
	assert.NotContains(t, out, "guide_border")
}

func TestMeasureCommand(t *testing.T) {
	out, err := run(t, "measure", `Hello\nWorld`, "--font-size", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "bubble")
	assert.Contains(t, out, `"Hello"`)
	assert.Contains(t, out, `"World"`)
	assert.Contains(t, out, "size 20")

	_, err = run(t, "measure", "x", "--max-width", "-1")
	assert.True(t, errs.Is(err, errs.CodeInvalidInput))
}

// keyLine 返回输出中以 key 开头的那一行。
func keyLine(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, key+" ") {
			return line
		}
	}
	t.Fatalf("no %q line in output:\n%s", key, out)
	return ""
}

func TestMeasureFontFile(t *testing.T) {
	mono, err := fonts.Load("embed:gomono")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "mono.ttf")
	require.NoError(t, os.WriteFile(path, mono, 0o644))

	narrow, err := run(t, "measure", "iii", "--font", "built-in:mono", "--font-file", "mono="+path)
	require.NoError(t, err)
	wide, err := run(t, "measure", "MMM", "--font", "built-in:mono", "--font-file", "mono="+path)
	require.NoError(t, err)
	assert.Equal(t, keyLine(t, narrow, "bubble"), keyLine(t, wide, "bubble"), "monospace glyphs share one advance")

	_, err = run(t, "measure", "x", "--font-file", "mono="+filepath.Join(t.TempDir(), "missing.ttf"))
	assert.ErrorContains(t, err, "字体 mono 不可用")
}

func TestMeasureFontStyle(t *testing.T) {
	regular, err := run(t, "measure", "Hello world")
	require.NoError(t, err)
	bold, err := run(t, "measure", "Hello world", "--font-style", "bold")
	require.NoError(t, err)
	assert.Contains(t, bold, "embed:goregular bold size")
	assert.NotEqual(t, keyLine(t, regular, "bubble"), keyLine(t, bold, "bubble"))
}

func TestRenderFontFileFromConfig(t *testing.T) {
	mono, err := fonts.Load("embed:gomono")
	require.NoError(t, err)
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "mono.ttf")
	require.NoError(t, os.WriteFile(fontPath, mono, 0o644))
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("[font.files]\nmono = %q\n", fontPath)), 0o644))

	script := writeScript(t, `sticker M v1 { layers { bubble b font "built-in:mono" text "iii" } }`)
	out, err := run(t, "layers", script, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "💬 iii")
}

func TestFontsCommand(t *testing.T) {
	out, err := run(t, "fonts")
	require.NoError(t, err)
	assert.Contains(t, out, "embed:goregular")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "embed:gomono")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 5))
	assert.Equal(t, "💬", truncate("💬💬", 3), "wide glyphs count as two columns")
}
