//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/popover/internal/placement"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Path = path
	assert.Equal(t, want, cfg)
	require.NoError(t, cfg.Validate())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "loading defaults must not create the file")
}

func TestLoad_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
measure_delay: 30ms
outside_click_debounce: 5ms
positions: [top, bottom]
anchors: [end]
preferred_position: bottom
bottom_sheet_below: 40
mode: absolute
close_text: Dismiss
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Millisecond, cfg.MeasureDelay)
	assert.Equal(t, 5*time.Millisecond, cfg.OutsideClickDebounce)
	assert.Equal(t, []placement.Position{placement.Top, placement.Bottom}, cfg.Positions)
	assert.Equal(t, []placement.Anchor{placement.End}, cfg.Anchors)
	assert.Equal(t, placement.Bottom, cfg.PreferredPosition)
	assert.Equal(t, 40, cfg.BottomSheetBelow)
	assert.Equal(t, ModeAbsolute, cfg.Mode)
	assert.Equal(t, "Dismiss", cfg.CloseText)

	prefs := cfg.Preferences()
	positions, _ := prefs.Ranked()
	assert.Equal(t, []placement.Position{placement.Bottom, placement.Top}, positions)
}

func TestLoad_HealsInvalidFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
measure_delay: -5ms
positions: []
mode: sideways
close_text: Shut
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.MeasureDelay, cfg.MeasureDelay)
	assert.Equal(t, def.Positions, cfg.Positions)
	assert.Equal(t, def.Mode, cfg.Mode)
	assert.Equal(t, "Shut", cfg.CloseText, "valid fields survive healing")

	// The healed config was written back.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(b, &raw))
	assert.Equal(t, "responsive", raw["mode"])
	assert.Equal(t, "15ms", raw["measure_delay"])
}

func TestLoad_UnknownPositionIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positions: [left]\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrUnknownPosition)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Path = path
	cfg.PreferredPosition = placement.Top

	require.NoError(t, cfg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_RequiresPath(t *testing.T) {
	require.Error(t, Default().Save())
}

func TestExpandTilde(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Tilde expansion not applicable on Windows")
	}
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandTilde("~/.config/popover/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/popover/config.yaml"), got)

	got, err = expandTilde("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}
