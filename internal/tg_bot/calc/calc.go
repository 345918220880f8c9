// Package calc implements the loan and solar calculators.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned for a wrong token count, a non-numeric token or a non-positive value.
var ErrInvalidInput = errors.New("invalid input")

// LoanResult is the outcome of a fixed-rate, fully amortizing loan with monthly payments.
type LoanResult struct {
	MonthlyPayment float64
	Total          float64
	Overpayment    float64
}

// Loan computes the annuity payment for principal borrowed over years at annualRatePercent.
// Fractional years are accepted.
func Loan(principal, years, annualRatePercent float64) (LoanResult, error) {
	if !positive(principal, years, annualRatePercent) {
		return LoanResult{}, ErrInvalidInput
	}
	monthlyRate := annualRatePercent / 100 / 12
	n := years * 12
	payment := principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -n))
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return LoanResult{}, ErrInvalidInput
	}
	total := payment * n
	return LoanResult{
		MonthlyPayment: payment,
		Total:          total,
		Overpayment:    total - principal,
	}, nil
}

// ParseLoan reads "principal years rate" and computes the loan.
func ParseLoan(text string) (LoanResult, error) {
	nums, err := parseNumbers(text, 3, 3)
	if err != nil {
		return LoanResult{}, err
	}
	return Loan(nums[0], nums[1], nums[2])
}

// SolarParams are the tunables of the sizing model.
type SolarParams struct {
	PerformanceRatio float64 // derating for real-world losses
	CostPerKW        float64 // installed cost per kW
	DefaultPSH       float64 // peak sun hours when the user gives none
}

// DefaultSolarParams returns the stock constants.
func DefaultSolarParams() SolarParams {
	return SolarParams{PerformanceRatio: 0.8, CostPerKW: 1050, DefaultPSH: 4.5}
}

// SolarResult is a sized system. Every field is rounded for display, and each
// figure is derived from the rounded figure before it.
type SolarResult struct {
	KW               float64 // 2 decimals
	Cost             float64 // 2 decimals
	YearlyGeneration float64 // kWh, whole number
	YearlySavings    float64 // 2 decimals
	PaybackYears     float64 // 2 decimals, 0 when there are no savings
}

// Solar sizes a system for monthlyKWh of consumption at tariff per kWh and psh peak sun hours.
func (p SolarParams) Solar(monthlyKWh, tariff, psh float64) (SolarResult, error) {
	if !positive(monthlyKWh, tariff, psh, p.PerformanceRatio, p.CostPerKW) {
		return SolarResult{}, ErrInvalidInput
	}
	kw := round(monthlyKWh/30/psh/p.PerformanceRatio, 2)
	cost := round(kw*p.CostPerKW, 2)
	gen := math.Round(kw * psh * 365 * p.PerformanceRatio)
	savings := round(gen*tariff, 2)
	var payback float64
	if savings > 0 {
		payback = round(cost/savings, 2)
	}
	return SolarResult{
		KW:               kw,
		Cost:             cost,
		YearlyGeneration: gen,
		YearlySavings:    savings,
		PaybackYears:     payback,
	}, nil
}

// ParseSolar reads "monthly_kWh tariff [peak_sun_hours]" and sizes the system.
// The peak sun hours default to p.DefaultPSH.
func (p SolarParams) ParseSolar(text string) (SolarResult, error) {
	nums, err := parseNumbers(text, 2, 3)
	if err != nil {
		return SolarResult{}, err
	}
	psh := p.DefaultPSH
	if len(nums) == 3 {
		psh = nums[2]
	}
	return p.Solar(nums[0], nums[1], psh)
}

// Money formats a currency amount with two decimals.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Number formats v without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseNumbers splits text on whitespace, accepting ',' as a decimal separator.
func parseNumbers(text string, min, max int) ([]float64, error) {
	fields := strings.Fields(strings.ReplaceAll(text, ",", "."))
	if len(fields) < min || len(fields) > max {
		return nil, fmt.Errorf("%w: want %d to %d numbers, got %d", ErrInvalidInput, min, max, len(fields))
	}
	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, f)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: %q must be positive", ErrInvalidInput, f)
		}
		nums[i] = v
	}
	return nums, nil
}

func positive(values ...float64) bool {
	for _, v := range values {
		if !(v > 0) {
			return false
		}
	}
	return true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
