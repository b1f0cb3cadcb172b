package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spv-projection/internal/config"
	"spv-projection/internal/model"
	"spv-projection/internal/projection"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestSaveLoadReplace(t *testing.T) {
	st, err := Open(t.TempDir(), withClock(fixedClock()))
	require.NoError(t, err)

	s := config.Default()
	first, err := st.Save(Scenario{Name: "baseline", Settings: s})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", first.ID.String())
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), first.Timestamp)

	s.SeedEquity = 500_000
	second, err := st.Save(Scenario{Name: "baseline", Settings: s})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := st.List()
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := st.Load("baseline")
	require.NoError(t, err)
	assert.Equal(t, 500_000.0, got.Settings.SeedEquity)
	assert.Equal(t, s.PurchaseYears, got.Settings.PurchaseYears)
	assert.Equal(t, s.ExtraPrepaySchedule, got.Settings.ExtraPrepaySchedule)
}

func TestSaveWithResultsAndOverlays(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)

	s := config.Default()
	s.Scenarios = model.Effects{model.RateSpike{Window: model.Window{StartYear: 2, Duration: 3}, BumpBps: 300}}
	rng, err := projection.NewRangeRunner(nil).Run(s)
	require.NoError(t, err)

	_, err = st.Save(Scenario{Name: "spike", Settings: s, Results: rng})
	require.NoError(t, err)

	got, err := st.Load("spike")
	require.NoError(t, err)
	require.Len(t, got.Settings.Scenarios, 1)
	assert.Equal(t, s.Scenarios[0], got.Settings.Scenarios[0])
	require.NotNil(t, got.Results)
	assert.InDeltaSlice(t, rng.Base.Equity, got.Results.Base.Equity, 1e-6)
}

func TestListSortedAndDelete(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := st.Save(Scenario{Name: name, Settings: config.Default()})
		require.NoError(t, err)
	}

	all, err := st.List()
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, sc := range all {
		names[i] = sc.Name
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	require.NoError(t, st.Delete("mid"))
	_, err = st.Load("mid")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(st.Delete("mid"), ErrNotFound))
}

func TestSave_RequiresName(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = st.Save(Scenario{Name: "  "})
	assert.ErrorIs(t, err, ErrNoName)
}

func TestEncryptedStore(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir, WithPassphrase("correct horse"), WithWorkFactor(10))
	require.NoError(t, err)
	assert.True(t, st.Encrypted())

	saved, err := st.Save(Scenario{Name: "secret", Settings: config.Default()})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, saved.ID.String()+".json"))
	require.NoError(t, err)
	assert.True(t, isEncrypted(raw))
	assert.NotContains(t, string(raw), "seed_equity")

	got, err := st.Load("secret")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	locked, err := Open(dir)
	require.NoError(t, err)
	list, err := locked.List()
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = locked.Load("secret")
	assert.ErrorIs(t, err, ErrLocked)

	wrong, err := Open(dir, WithPassphrase("wrong"))
	require.NoError(t, err)
	_, err = wrong.Load("secret")
	assert.Error(t, err)
}

func TestMixedStoreWithoutPassphrase(t *testing.T) {
	dir := t.TempDir()
	enc, err := Open(dir, WithPassphrase("correct horse"), WithWorkFactor(10), withClock(fixedClock()))
	require.NoError(t, err)
	_, err = enc.Save(Scenario{Name: "secret", Settings: config.Default()})
	require.NoError(t, err)

	plain, err := Open(dir, withClock(fixedClock()))
	require.NoError(t, err)
	_, err = plain.Save(Scenario{Name: "beta", Settings: config.Default()})
	require.NoError(t, err)
	_, err = plain.Save(Scenario{Name: "alpha", Settings: config.Default()})
	require.NoError(t, err)

	list, err := plain.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)

	got, err := plain.Load("beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", got.Name)

	_, err = plain.Load("secret")
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, plain.Delete("secret"), ErrLocked)
	require.NoError(t, plain.Delete("alpha"))

	// with the passphrase every file is readable again
	all, err := enc.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "beta", all[0].Name)
	assert.Equal(t, "secret", all[1].Name)
}

func TestStoreWithoutEncryptedFilesReportsNotFound(t *testing.T) {
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = st.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrLocked))
}
