package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscrnt/mchtimings/internal/config"
	"github.com/mscrnt/mchtimings/pkg/decoder"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func missingToolConfig(t *testing.T) string {
	t.Helper()
	tool := filepath.Join(t.TempDir(), "missing-rw")
	path := filepath.Join(t.TempDir(), "mchtimings.yaml")
	content := "tool:\n  path: '" + tool + "'\n  retries: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeDefaults(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)

	assert.Contains(t, out, reportTitle)
	assert.Contains(t, out, "=== C0DRC0 === Address: 0x120 Value: 0x40000906")
	assert.Contains(t, out, "@ 200 MHz\t3-3-3-9   (CL-RCD-RP-RAS) / 12-26-2-3-2-8  (RC-RFC-RRD-WR-WTR-RTP)")
	assert.Contains(t, out, "SPD Memory Timings")
}

func TestDecodeOverrides(t *testing.T) {
	t.Run("positional", func(t *testing.T) {
		out, err := execute(t, "114=03408110", "not-a-register")
		require.NoError(t, err)
		assert.Contains(t, out, "Value: 0x03408110")
		assert.Contains(t, out, "4-3-2-4 ")
	})

	t.Run("set flag", func(t *testing.T) {
		out, err := execute(t, "--set", "0x114=0x03408110")
		require.NoError(t, err)
		assert.Contains(t, out, "4-3-2-4 ")
	})

	t.Run("malformed set flag", func(t *testing.T) {
		_, err := execute(t, "--set", "114")
		assert.ErrorContains(t, err, "NNN=VALUE")
	})

	t.Run("unknown offset", func(t *testing.T) {
		out, err := execute(t, "200=1")
		require.NoError(t, err)
		assert.Contains(t, out, "3-3-3-9")
	})

	t.Run("unmapped code", func(t *testing.T) {
		_, err := execute(t, "114=0290D311")
		var fe *decoder.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "CL", fe.ID)
	})
}

func TestDecodeFormats(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		out, err := execute(t, "--simple")
		require.NoError(t, err)
		assert.Contains(t, out, "  CL    3    CAS Latency\n")
	})

	t.Run("json subcommand", func(t *testing.T) {
		out, err := execute(t, "decode", "--format", "json", "114=03408110")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		summary := doc["summary"].(map[string]any)
		assert.Equal(t, "4-3-2-4", summary["primary"])
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := execute(t, "--format", "xml")
		assert.Error(t, err)
	})

	t.Run("pdf needs out", func(t *testing.T) {
		_, err := execute(t, "--format", "pdf")
		assert.ErrorContains(t, err, "--out")
	})

	t.Run("html file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timings.html")
		out, err := execute(t, "--format", "html", "-o", path)
		require.NoError(t, err)
		assert.Empty(t, out)

		html, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(html), "<title>"+reportTitle+"</title>")
	})
}

func TestDecodeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mchtimings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timing]\nclock_mhz = 266\nwr = 4\n"), 0o600))

	out, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "@ 266 MHz\t3-3-3-9   (CL-RCD-RP-RAS) / 12-26-2-4-2-8 ")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecodeLiveReadFailure(t *testing.T) {
	cfg := missingToolConfig(t)

	_, err := execute(t, "--with-read", "--config", cfg)
	var re *decoder.ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "C0DRT0", re.Register)

	out, err := execute(t, "--with-read", "--fallback-defaults", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "3-3-3-9")

	// Overridden registers are never read
	out, err = execute(t, "--with-read", "--config", cfg,
		"110=987820C8", "114=0290D211", "118=80000230", "120=40000906")
	require.NoError(t, err)
	assert.Contains(t, out, "3-3-3-9")
}

func TestRegistersCmd(t *testing.T) {
	out, err := execute(t, "registers")
	require.NoError(t, err)

	assert.Contains(t, out, "0x110  C0DRT0  default 0x987820C8  (MCHBAR+0x110 = 0xFED14110)")
	assert.Contains(t, out, "  9:8    CL    CAS Latency\n")
	assert.Contains(t, out, "  RC = RAS + RP\n")
	assert.Contains(t, out, "Summary: CL-RCD-RP-RAS / RC-RFC-RRD-WR-WTR-RTP")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mchtimings")
	assert.Contains(t, out, "Version:    dev")
}

func TestOverrideList(t *testing.T) {
	var l overrideList
	require.NoError(t, l.Set("110=1"))
	require.NoError(t, l.Set("114=2"))
	assert.Error(t, l.Set("x"))

	assert.Equal(t, "0x110=0x00000001,0x114=0x00000002", l.String())
	assert.Equal(t, "NNN=VALUE", l.Type())
}
