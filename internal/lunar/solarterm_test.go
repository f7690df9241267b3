package lunar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

func TestSolarTerms_2024(t *testing.T) {
	wantDays := []int{6, 20, 4, 19, 5, 20, 4, 19, 5, 20, 5, 21, 6, 22, 7, 23, 7, 22, 8, 23, 7, 22, 6, 21}

	terms, err := lunar.SolarTerms(2024)
	require.NoError(t, err)
	require.Len(t, terms, lunar.TermCount)

	for i, term := range terms {
		assert.Equal(t, i, term.Index)
		assert.Equal(t, i/2+1, term.Date.Month, "term %s", term.Name)
		assert.Equal(t, wantDays[i], term.Date.Day, "term %s", term.Name)
	}
	assert.Equal(t, "立春", terms[2].Name)
	assert.Equal(t, "冬至", terms[23].Name)
}

func TestSolarTerm_Spot(t *testing.T) {
	tests := []struct {
		year, n int
		want    lunar.SolarDate
	}{
		{1900, 0, lunar.SolarDate{Year: 1900, Month: 1, Day: 6}},
		{2000, 5, lunar.SolarDate{Year: 2000, Month: 3, Day: 20}},
		{2025, 2, lunar.SolarDate{Year: 2025, Month: 2, Day: 3}},
		{2050, 23, lunar.SolarDate{Year: 2050, Month: 12, Day: 21}},
	}
	for _, tt := range tests {
		got, err := lunar.SolarTerm(tt.year, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d term %d", tt.year, tt.n)
	}
}

func TestSolarTerm_Errors(t *testing.T) {
	_, err := lunar.SolarTerm(2024, 24)
	assert.ErrorIs(t, err, lunar.ErrInvalidTerm)
	_, err = lunar.SolarTerm(2024, -1)
	assert.ErrorIs(t, err, lunar.ErrInvalidTerm)
	_, err = lunar.SolarTerm(1899, 0)
	assert.ErrorIs(t, err, lunar.ErrOutOfRange)
	_, err = lunar.SolarTerms(2051)
	assert.ErrorIs(t, err, lunar.ErrOutOfRange)
}

func TestTermOn(t *testing.T) {
	term, ok := lunar.TermOn(lunar.SolarDate{Year: 2024, Month: 2, Day: 4})
	require.True(t, ok)
	assert.Equal(t, "立春", term.Name)

	_, ok = lunar.TermOn(lunar.SolarDate{Year: 2024, Month: 2, Day: 5})
	assert.False(t, ok)

	assert.Equal(t, "小寒", lunar.TermName(0))
	assert.Empty(t, lunar.TermName(24))
}
