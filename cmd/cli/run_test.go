package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spv-projection/internal/config"
	"spv-projection/internal/store"
)

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunCmd_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cmd := &runCmd{
		csv:    filepath.Join(dir, "out", "range.csv"),
		ledger: filepath.Join(dir, "out", "ledger.csv"),
		json:   filepath.Join(dir, "out", "report.json"),
		format: "markdown",
	}

	status := cmd.Execute(context.Background(), flag.NewFlagSet("run", flag.ContinueOnError))
	require.Equal(t, subcommands.ExitSuccess, status)

	def := config.Default()
	rows := def.RetirementYear + def.ForecastPeriod + 1

	raw, err := os.ReadFile(cmd.csv)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, rows+1)
	assert.True(t, strings.HasPrefix(lines[0], "year,base_value,base_equity,base_dividends"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"), lines[1])

	raw, err = os.ReadFile(cmd.ledger)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, rows+1)
	assert.True(t, strings.HasPrefix(lines[0], "year,injection,acquisitions"), lines[0])

	raw, err = os.ReadFile(cmd.json)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

func TestRunCmd_ConfigWithStress(t *testing.T) {
	plan := writePlan(t, `name: small
settings:
  seed_equity: 200000
  retirement_year: 6
  forecast_period: 2
`)
	out := filepath.Join(t.TempDir(), "range.csv")
	cmd := &runCmd{config: plan, stress: "rate-spike", csv: out, format: "markdown"}

	status := cmd.Execute(context.Background(), flag.NewFlagSet("run", flag.ContinueOnError))
	require.Equal(t, subcommands.ExitSuccess, status)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 6+2+1+1)
}

func TestRunCmd_Failures(t *testing.T) {
	invalid := writePlan(t, "settings:\n  unit_price: -1\n")

	cases := []struct {
		name string
		cmd  *runCmd
		want subcommands.ExitStatus
	}{
		{"invalid plan", &runCmd{config: invalid}, subcommands.ExitUsageError},
		{"missing plan", &runCmd{config: filepath.Join(t.TempDir(), "nope.yaml")}, subcommands.ExitFailure},
		{"unknown stress test", &runCmd{stress: "no-such-preset"}, subcommands.ExitUsageError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := tc.cmd.Execute(context.Background(), flag.NewFlagSet("run", flag.ContinueOnError))
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestCompareCmd_NeedsPlans(t *testing.T) {
	status := (&compareCmd{}).Execute(context.Background(), flag.NewFlagSet("compare", flag.ContinueOnError))
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestSaveCmd_StoresPlan(t *testing.T) {
	t.Setenv("SPV_STORE_PASSPHRASE", "")
	dir := t.TempDir()

	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	cmd := &saveCmd{}
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-dir", dir, "-run", "nominal"}))

	require.Equal(t, subcommands.ExitSuccess, cmd.Execute(context.Background(), fs))

	st, err := store.Open(dir)
	require.NoError(t, err)
	sc, err := st.Load("nominal")
	require.NoError(t, err)
	assert.Equal(t, config.Default().SeedEquity, sc.Settings.SeedEquity)
	assert.NotNil(t, sc.Results)

	fs = flag.NewFlagSet("delete", flag.ContinueOnError)
	del := &deleteCmd{}
	del.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-dir", dir, "nominal"}))
	require.Equal(t, subcommands.ExitSuccess, del.Execute(context.Background(), fs))

	_, err = st.Load("nominal")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
