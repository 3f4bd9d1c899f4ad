package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/helpers"
)

func TestLoadInstruments(t *testing.T) {
	f, err := LoadInstruments("testdata/estr.yaml")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-06", f.ReferenceDate)
	assert.Equal(t, "TARGET", f.Calendar)
	assert.Equal(t, "iterative", f.Bootstrap)
	assert.Equal(t, 1, f.Swap.PayDelay)
	require.Len(t, f.Instruments, 8)
	assert.Equal(t, "fra", f.Instruments[2].Type)
	assert.Equal(t, 0.0238, f.Instruments[7].Rate)

	ref, hs, opts, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", ref.Format("2006-01-02"))
	require.Len(t, hs, 8)
	assert.Len(t, opts, 1)

	_, isSwap := hs[7].(*helpers.SwapHelper)
	assert.True(t, isSwap)
}

func TestLoadInstruments_Invalid(t *testing.T) {
	_, err := LoadInstruments("testdata/bad_type.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate instruments")

	_, err = LoadInstruments("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestBuild_RequiresTenorOrDates(t *testing.T) {
	f := &InstrumentFile{
		ReferenceDate: "2025-01-06",
		Calendar:      "NONE",
		DayCount:      "ACT/360",
		Traits:        "zero",
		Interpolation: "linear",
		Bootstrap:     "local",
		Instruments:   []Instrument{{Type: "deposit", Rate: 0.03}},
	}
	_, _, _, err := f.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instrument 1 (deposit)")

	f.Instruments[0].Start = "2025-01-08"
	f.Instruments[0].End = "2025-04-08"
	_, hs, opts, err := f.Build()
	require.NoError(t, err)
	assert.Len(t, hs, 1)
	assert.Len(t, opts, 3)
}

func TestFitCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"fit", "--config", "testdata/solver.toml", "-i", "testdata/estr.yaml", "--metrics"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile, instrumentsFile, dumpMetrics = "", "", false
	})

	require.NoError(t, Execute())

	text := out.String()
	assert.Contains(t, text, "discount")
	assert.Contains(t, text, "2025-01-06")
	assert.Contains(t, text, "quote error")
	assert.Contains(t, text, `curvefit_bootstrap_runs_total{algorithm="iterative",result="success"} 1`)
	// header, reference node, one row per instrument
	nodeTable := strings.SplitN(text, "\n\n", 2)[0]
	assert.Len(t, strings.Split(strings.TrimSpace(nodeTable), "\n"), 10)
}

func TestPrintCurve_ReportsFitError(t *testing.T) {
	f, err := LoadInstruments("testdata/estr.yaml")
	require.NoError(t, err)
	f.Instruments = append(f.Instruments, f.Instruments[len(f.Instruments)-1])
	ref, hs, opts, err := f.Build()
	require.NoError(t, err)

	c, err := curve.New(ref, hs, opts...)
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	err = printCurve(&out, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, curve.ErrDuplicatePillar)
	assert.Empty(t, out.String())
}

func TestBuild_SwapConventionPreset(t *testing.T) {
	f, err := LoadInstruments("testdata/estr.yaml")
	require.NoError(t, err)

	f.Swap.Convention = "ESTR-OIS"
	_, hs, _, err := f.Build()
	require.NoError(t, err)
	swap := hs[3].(*helpers.SwapHelper)
	assert.Len(t, swap.PaymentDates(), 1)

	f.Swap.Convention = "XYZ"
	_, _, _, err = f.Build()
	assert.Error(t, err)
}

func TestFitCommand_ReportsErrorOnce(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"fit", "-i", "testdata/missing.yaml"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile, instrumentsFile, dumpMetrics = "", "", false
	})

	err := Execute()
	require.Error(t, err)
	assert.ErrorContains(t, err, "load instruments: read instruments")
	assert.Equal(t, 1, strings.Count(out.String(), "read instruments"))
}
