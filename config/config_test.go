package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSquareVariant(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 512.0, c.Artboard.Size)
	assert.Equal(t, 16.0, c.Bubble.Padding)
	assert.Equal(t, 12.0, c.Bubble.CornerRadius)
	assert.Equal(t, []int{512, 1024, 2048}, c.Export.Sizes)
	assert.Equal(t, "vrc_sticker_%d.png", c.Export.Filename)
	assert.Equal(t, 20.0, c.Editor.CloneOffset)
	assert.True(t, c.AllowsSize(1024))
	assert.False(t, c.AllowsSize(300))
}

func TestLoadOverlaysOnlyGivenKeys(t *testing.T) {
	c := MustDefault()
	require.NoError(t, c.Load(`
[bubble]
padding = 24

[upload]
single_avatar = true
`))
	assert.Equal(t, 24.0, c.Bubble.Padding)
	assert.True(t, c.Upload.SingleAvatar)
	assert.Equal(t, 24.0, c.Bubble.FontSize, "unrelated keys keep their defaults")
}

func TestLoadFontSection(t *testing.T) {
	c := MustDefault()
	assert.Equal(t, "embed:goregular", c.Font.Src)
	assert.Empty(t, c.Font.Style)
	assert.Empty(t, c.Font.Files)

	require.NoError(t, c.Load(`
[font]
src = "built-in:hand"
style = "bold italic"

[font.files]
hand = "fonts/hand.ttf"
`))
	assert.Equal(t, "built-in:hand", c.Font.Src)
	assert.Equal(t, "bold italic", c.Font.Style)
	assert.Equal(t, map[string]string{"hand": "fonts/hand.ttf"}, c.Font.Files)
}

func TestValidateRejectsBrokenValues(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero artboard", "[artboard]\nsize = 0"},
		{"negative padding", "[bubble]\npadding = -1"},
		{"empty sizes", "[export]\nsizes = []"},
		{"bad size", "[export]\nsizes = [512, 0]"},
		{"inverted zoom", "[editor]\nmin_zoom = 3.0\nmax_zoom = 1.0"},
		{"filename without size", "[export]\nfilename = \"sticker.png\""},
		{"filename with two sizes", "[export]\nfilename = \"s_%d_%d.png\""},
		{"filename with string verb", "[export]\nfilename = \"s_%s.png\""},
		{"filename trailing percent", "[export]\nfilename = \"s_%d%\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MustDefault()
			assert.Error(t, c.Load(tt.toml))
		})
	}
}

func TestValidateAcceptsFilenamePatterns(t *testing.T) {
	for _, pattern := range []string{"sticker_%d.png", "s_%04d.png", "100%%_%d.png", ""} {
		c := MustDefault()
		assert.NoError(t, c.Load(fmt.Sprintf("[export]\nfilename = %q", pattern)), pattern)
	}
}

func TestResolveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[artboard]\nsize = 1024\nx = 100\n"), 0o644))

	c, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 1024.0, c.Artboard.Size)
	assert.Equal(t, 100.0, c.Artboard.X)

	_, err = Resolve(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestResolveEnvDirMissingFileFallsBack(t *testing.T) {
	t.Setenv("STICKERBOARD_CONFIG_DIR", t.TempDir())
	c, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, 512.0, c.Artboard.Size)
}
