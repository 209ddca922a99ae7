package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "Always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestResolveColors(t *testing.T) {
	assert.True(t, ResolveColors(ColorAlways))
	assert.False(t, ResolveColors(ColorNever))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColors(ColorAuto))
}

func TestPrinterPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Info("run %s", "r1")
	p.Success("wrote %d rows", 2)
	p.Warning("no resources found")
	p.Error("boom")
	p.Header("Run r1")

	assert.Equal(t, "run r1\n[OK] wrote 2 rows\n\nRun r1\n------\n", out.String())
	assert.Equal(t, "[WARN] no resources found\n[ERROR] boom\n", errOut.String())
}

func TestPrinterStage(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Stage("scrape", nil, "120 bytes extracted")
	p.Stage("generate", errors.New("quota"), "")

	assert.Equal(t, "[OK] scrape   120 bytes extracted\n", out.String())
	assert.Equal(t, "[ERROR] generate quota\n", errOut.String())
}
