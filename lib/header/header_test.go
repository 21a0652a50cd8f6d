package header

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-i2p/boardcfg/lib/option"
	"github.com/go-i2p/boardcfg/lib/resolver"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSymbols = map[string]string{
	"board.name":                 "MICROPY_HW_BOARD_NAME",
	"hardware.dac":               "MICROPY_PY_MACHINE_DAC",
	"memory.gc_stack_entry_type": "MICROPY_GC_STACK_ENTRY_TYPE",
	"security.backend":           "MICROPY_SSL_{VALUE}",
	"security.tls":               "MICROPY_PY_USSL",
}

func resolved(t *testing.T, override map[string]option.Value) *resolver.Resolved {
	t.Helper()
	base := option.MustLayer("common.yaml", option.SourceBaseline, map[string]option.Value{
		"board.name":                 option.String("ESP32 Generic"),
		"hardware.dac":               option.Bool(false),
		"memory.gc_stack_entry_type": option.Symbol("size_t"),
		"security.tls":               option.Bool(false),
		"storage.block_size":         option.Int(4096),
	})
	over := option.MustLayer("board.yaml", option.SourceOverride, override)
	r, err := resolver.Resolve(over, base, nil)
	require.NoError(t, err)
	return r
}

func TestRenderGolden(t *testing.T) {
	r := resolved(t, map[string]option.Value{
		"board.name":       option.String("ESP32 Custom"),
		"security.tls":     option.Bool(true),
		"security.backend": option.Symbol("mbedtls"),
	})

	got, err := Bytes("ESP32_GENERIC_CUSTOM", r, Options{Symbols: testSymbols})
	require.NoError(t, err)

	want := `// Code generated by boardcfg. DO NOT EDIT.
// board: ESP32_GENERIC_CUSTOM
// digest: ` + r.DigestHex() + `

#ifndef BOARDCFG_ESP32_GENERIC_CUSTOM_H
#define BOARDCFG_ESP32_GENERIC_CUSTOM_H

#define MICROPY_HW_BOARD_NAME "ESP32 Custom"
#define MICROPY_PY_MACHINE_DAC (0)
#define MICROPY_GC_STACK_ENTRY_TYPE size_t
#define MICROPY_SSL_MBEDTLS (1)
#define MICROPY_PY_USSL (1)
#define MICROPY_STORAGE_BLOCK_SIZE (4096)

#endif // BOARDCFG_ESP32_GENERIC_CUSTOM_H
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSkipsEmptySelection(t *testing.T) {
	r := resolved(t, map[string]option.Value{
		"security.backend": option.Symbol(""),
	})

	got, err := Bytes("b", r, Options{Symbols: testSymbols})
	require.NoError(t, err)
	assert.NotContains(t, string(got), "MICROPY_SSL_")
}

func TestRenderRejectsBoolSelection(t *testing.T) {
	r := resolved(t, map[string]option.Value{
		"security.backend": option.Bool(true),
	})

	_, err := Bytes("b", r, Options{Symbols: testSymbols})
	assert.ErrorIs(t, err, ErrSelectionKind)
}

func TestRenderRejectsMacroCollision(t *testing.T) {
	base := option.MustLayer("common.yaml", option.SourceBaseline, map[string]option.Value{
		"net.wlan_ap":   option.Bool(false),
		"net_wlan.ap":   option.Bool(true),
		"security.tls":  option.Bool(false),
		"hardware.dac":  option.Bool(false),
		"hardware.uart": option.Int(2),
	})
	r, err := resolver.Resolve(option.Layer{}, base, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		symbols map[string]string
	}{
		{name: "derived names", symbols: nil},
		{name: "symbol table", symbols: map[string]string{
			"security.tls": "MICROPY_SHARED",
			"hardware.dac": "MICROPY_SHARED",
			"net.wlan_ap":  "MICROPY_AP",
			"net_wlan.ap":  "MICROPY_STA_AP",
		}},
		{name: "symbol hits derived name", symbols: map[string]string{
			"net.wlan_ap": "MICROPY_STA_AP",
			"net_wlan.ap": "MICROPY_HARDWARE_UART",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bytes("b", r, Options{Symbols: tt.symbols})
			assert.ErrorIs(t, err, ErrMacroCollision)
			assert.Nil(t, got)
		})
	}
}

func TestRenderSelectionCollidesWithPlainMacro(t *testing.T) {
	r := resolved(t, map[string]option.Value{
		"security.backend": option.Symbol("py_ussl"),
	})
	symbols := map[string]string{
		"security.backend": "MICROPY_{VALUE}",
		"security.tls":     "MICROPY_PY_USSL",
	}

	_, err := Bytes("b", r, Options{Symbols: symbols})
	assert.ErrorIs(t, err, ErrMacroCollision)
}

func TestMacroName(t *testing.T) {
	assert.Equal(t, "MICROPY_PY_USSL", MacroName("security.tls", testSymbols, ""))
	assert.Equal(t, "MICROPY_FILESYSTEM_LITTLEFS2", MacroName("filesystem.littlefs2", nil, ""))
	assert.Equal(t, "CFG_FILESYSTEM_FAT", MacroName("filesystem.fat", nil, "CFG_"))
}

func TestValidateMacro(t *testing.T) {
	for _, ok := range []string{"MICROPY_PY_USSL", "MICROPY_SSL_{VALUE}", "_X", "A{VALUE}B"} {
		assert.NoError(t, ValidateMacro(ok), ok)
	}
	for _, bad := range []string{"", "1ABC", "HAS SPACE", "{VALUE}_SSL", "A_{VALUE}_{VALUE}", "A-B"} {
		assert.ErrorIs(t, ValidateMacro(bad), ErrInvalidMacro, bad)
	}
}

func TestCQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, cQuote("plain"))
	assert.Equal(t, `"a \"q\" \\ b"`, cQuote(`a "q" \ b`))
	assert.Equal(t, `"line\nnext\ttab"`, cQuote("line\nnext\ttab"))
	assert.Equal(t, `"\303\251"`, cQuote("é"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ESP32_S3_DEVKIT", sanitize("esp32-s3.devkit"))
}

func TestWriteFileAtomicAndIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "ESP32", "mpconfigboard.h")
	r := resolved(t, nil)

	changed, err := WriteFile(path, "ESP32", r, Options{Symbols: testSymbols})
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// Code generated by boardcfg."))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())

	changed, err = WriteFile(path, "ESP32", r, Options{Symbols: testSymbols})
	require.NoError(t, err)
	assert.False(t, changed, "identical content must not be rewritten")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")
}
