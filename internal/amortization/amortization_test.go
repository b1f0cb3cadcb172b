package amortization

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_OneYearLoan(t *testing.T) {
	// 120k at 6% over 12 months: M = 120000·0.005·1.005^12 / (1.005^12 − 1).
	payment := MonthlyPayment(120_000, 0.06, 1)
	assert.InDelta(t, 10_327.97, payment, 0.01)

	sched, err := Table(120_000, 0.06, 1)
	require.NoError(t, err)
	require.Len(t, sched, 1)

	assert.InDelta(t, 120_000.00, sched[0].Principal, 0.01)
	assert.InDelta(t, payment*12, sched[0].Principal+sched[0].Interest, 0.01)
}

func TestTable_PrincipalSumsToLoan(t *testing.T) {
	cases := []struct {
		name  string
		loan  float64
		rate  float64
		years int
	}{
		{"thirty years at 4%", 390_000, 0.04, 30},
		{"short high rate", 50_000, 0.15, 3},
		{"zero rate", 90_000, 0, 10},
		{"tiny loan", 1, 0.035, 25},
		{"forty years at 90%", 390_000, 0.9, 40},
		{"fifty years at 70%", 390_000, 0.7, 50},
		{"fifty years at 50%", 390_000, 0.5, 50},
		{"fifty years at 99%", 390_000, 0.99, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sched, err := Table(tc.loan, tc.rate, tc.years)
			require.NoError(t, err)
			require.Len(t, sched, tc.years)

			var sum float64
			for _, y := range sched {
				sum += y.Principal
			}
			assert.InEpsilon(t, tc.loan, sum, 1e-6)
		})
	}
}

func TestTable_ZeroRateIsEqualInstalments(t *testing.T) {
	sched, err := Table(120_000, 0, 10)
	require.NoError(t, err)
	for _, y := range sched {
		assert.InDelta(t, 12_000, y.Principal, 1e-9)
		assert.Zero(t, y.Interest)
	}
}

func TestTable_InterestDeclines(t *testing.T) {
	sched, err := Table(390_000, 0.04, 30)
	require.NoError(t, err)
	for i := 1; i < len(sched); i++ {
		assert.Less(t, sched[i].Interest, sched[i-1].Interest)
		assert.Greater(t, sched[i].Principal, sched[i-1].Principal)
	}
}

func TestTable_ZeroLoan(t *testing.T) {
	sched, err := Table(0, 0.04, 5)
	require.NoError(t, err)
	for _, y := range sched {
		assert.Zero(t, y.Principal)
		assert.Zero(t, y.Interest)
	}
}

func TestTable_RejectsInvalidTerms(t *testing.T) {
	_, err := Table(-1, 0.04, 30)
	assert.Error(t, err)
	_, err = Table(100, -0.01, 30)
	assert.Error(t, err)
	_, err = Table(100, 0.04, 0)
	assert.Error(t, err)
}

func TestCache_ReusesSchedules(t *testing.T) {
	c := NewCache()

	a, err := c.Table(390_000, 0.04, 30)
	require.NoError(t, err)
	b, err := c.Table(390_000, 0.04, 30)
	require.NoError(t, err)
	_, err = c.Table(390_000, 0.045, 30)
	require.NoError(t, err)

	assert.Same(t, &a[0], &b[0])
	assert.Equal(t, 2, c.Len())
	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestCache_NilComputes(t *testing.T) {
	var c *Cache
	sched, err := c.Table(10_000, 0.05, 2)
	require.NoError(t, err)
	assert.Len(t, sched, 2)
	assert.Zero(t, c.Len())
}

func TestCache_ConcurrentUse(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Table(100_000, 0.03+float64(i%4)/100, 20)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
