package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoan(t *testing.T) {
	res, err := ParseLoan("8000 5 8")
	require.NoError(t, err)

	assert.InDelta(t, 162.20, res.MonthlyPayment, 0.015)
	assert.InDelta(t, 9731.87, res.Total, 1.0)
	assert.InDelta(t, 1731.87, res.Overpayment, 1.0)
	assert.InDelta(t, res.MonthlyPayment*60, res.Total, 1e-9)
	assert.Equal(t, "162.21", Money(res.MonthlyPayment))
}

func TestParseLoanAcceptsDecimalComma(t *testing.T) {
	dot, err := ParseLoan("8000.5 2.5 7.9")
	require.NoError(t, err)
	comma, err := ParseLoan("8000,5 2,5 7,9")
	require.NoError(t, err)
	assert.Equal(t, dot, comma)
}

func TestParseLoanRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"abc 5 8", "8000 5", "8000 -5 8", "0 5 8", "8000 5 8 1", "", "8000 5 0", "8000 NaN 8"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseLoan(input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSolar(t *testing.T) {
	p := DefaultSolarParams()

	res, err := p.ParseSolar("450 0.22 4.2")
	require.NoError(t, err)

	assert.InDelta(t, 4.46, res.KW, 0.005)
	assert.InEpsilon(t, 4687, res.Cost, 0.01)
	assert.InEpsilon(t, 5470, res.YearlyGeneration, 0.01)
	assert.InEpsilon(t, 1203.4, res.YearlySavings, 0.01)
	assert.InEpsilon(t, 3.9, res.PaybackYears, 0.01)
}

func TestSolarDefaultPeakSunHours(t *testing.T) {
	p := DefaultSolarParams()

	withDefault, err := p.ParseSolar("450 0,22")
	require.NoError(t, err)
	explicit, err := p.Solar(450, 0.22, 4.5)
	require.NoError(t, err)
	assert.Equal(t, explicit, withDefault)
}

func TestSolarUsesParams(t *testing.T) {
	p := SolarParams{PerformanceRatio: 0.75, CostPerKW: 1000, DefaultPSH: 4.5}

	res, err := p.Solar(300, 0.2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2.67, res.KW)
	assert.Equal(t, 2670.0, res.Cost)
}

func TestSolarRejectsInvalidInput(t *testing.T) {
	p := DefaultSolarParams()
	for _, input := range []string{"450", "450 0.22 4.2 1", "x 0.22", "450 -0.22", "0 0.22", "450 0.22 0"} {
		t.Run(input, func(t *testing.T) {
			_, err := p.ParseSolar(input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
