package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLine_VentaLocalDivideCGSTySGST(t *testing.T) {
	l := ComputeLine(d("3"), d("100"), decimal.Zero, d("18"), false)
	assert.Equal(t, "300", l.Taxable.String())
	assert.Equal(t, "27", l.CGST.String())
	assert.Equal(t, "27", l.SGST.String())
	assert.True(t, l.IGST.IsZero())
	assert.Equal(t, "354", l.Total.String())
}

func TestComputeLine_InterestatalUsaIGST(t *testing.T) {
	l := ComputeLine(d("2"), d("250"), decimal.Zero, d("12"), true)
	assert.Equal(t, "60", l.IGST.String())
	assert.True(t, l.CGST.IsZero())
	assert.True(t, l.SGST.IsZero())
	assert.Equal(t, "60", l.Tax().String())
}

func TestComputeLine_DescuentoYRedondeo(t *testing.T) {
	// 1 x 99.99 con 10% = 89.991 -> 89.99; 5% = 4.4995 -> 4.50; CGST 2.25, SGST 2.25
	l := ComputeLine(d("1"), d("99.99"), d("10"), d("5"), false)
	assert.Equal(t, "89.99", l.Taxable.String())
	assert.Equal(t, "4.5", l.Tax().String())
	assert.Equal(t, "2.25", l.CGST.String())
	assert.Equal(t, "2.25", l.SGST.String())
}

func TestComputeLine_CentavoImparVaASGST(t *testing.T) {
	// 10.1 * 5% = 0.505 -> 0.51; CGST 0.26 (0.255 redondeado), SGST 0.25
	l := ComputeLine(d("1"), d("10.1"), decimal.Zero, d("5"), false)
	assert.Equal(t, "0.51", l.Tax().String())
	assert.Equal(t, l.Tax().String(), l.CGST.Add(l.SGST).String())
}

func TestSummarize_RedondeaALaRupia(t *testing.T) {
	lines := []Line{
		ComputeLine(d("1"), d("99.99"), d("10"), d("5"), false), // 94.49
		ComputeLine(d("2"), d("10"), decimal.Zero, d("0"), false), // 20
	}
	tot := Summarize(lines)
	assert.Equal(t, "109.99", tot.Taxable.String())
	assert.Equal(t, "4.5", tot.TotalTax.String())
	assert.Equal(t, "114", tot.GrandTotal.String())
	assert.Equal(t, "-0.49", tot.RoundOff.String())
}

func TestIsValidRate(t *testing.T) {
	for _, r := range []string{"0", "5", "12", "18", "28"} {
		assert.True(t, IsValidRate(d(r)), r)
	}
	assert.False(t, IsValidRate(d("19")))
}

func TestGSTIN(t *testing.T) {
	assert.True(t, IsValidGSTIN("27AAPFU0939F1ZV"))
	assert.False(t, IsValidGSTIN("27AAPFU0939F1XV"))
	assert.False(t, IsValidGSTIN("ABC"))
	assert.Equal(t, "27", StateCodeFromGSTIN("27AAPFU0939F1ZV"))
	assert.True(t, IsInterState("27", "29"))
	assert.False(t, IsInterState("27", "27"))
	assert.False(t, IsInterState("27", ""))
}
