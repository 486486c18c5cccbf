package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sample = `sku,name,hsn_code,unit,price,gst_rate,initial_stock,sub_unit,conversion_rate,low_stock_threshold
PVC-1,Tubo PVC 1 pulgada,3917,box,"1,440.00",18,10,pipe,12,2
CEM-50,Cemento 50kg,2523,BAG,400,28,5,,,

`

func TestParseProducts_UTF8(t *testing.T) {
	got, err := ParseProducts(strings.NewReader(sample), "")
	require.NoError(t, err)
	require.Len(t, got, 2)

	pipe := got[0]
	assert.Equal(t, "PVC-1", pipe.SKU)
	assert.Equal(t, "BOX", pipe.Unit)
	assert.True(t, pipe.Price.Equal(decimal.RequireFromString("1440")))
	assert.True(t, pipe.HasSubUnit)
	require.NotNil(t, pipe.SubUnit)
	assert.Equal(t, "PIPE", pipe.SubUnit.Unit)
	assert.True(t, pipe.SubUnit.ConversionRate.Equal(decimal.NewFromInt(12)))
	assert.True(t, pipe.LowStockThreshold.Equal(decimal.NewFromInt(2)))

	cement := got[1]
	assert.False(t, cement.HasSubUnit)
	assert.Nil(t, cement.SubUnit)
	assert.True(t, cement.InitialStock.Equal(decimal.NewFromInt(5)))
}

func TestParseProducts_Windows1252(t *testing.T) {
	src := "sku,name,unit\nCAÑ-1,Caño galvanizado ½ pulgada,PCS\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	got, err := ParseProducts(bytes.NewReader([]byte(encoded)), "windows-1252")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CAÑ-1", got[0].SKU)
	assert.Equal(t, "Caño galvanizado ½ pulgada", got[0].Name)
}

func TestParseProducts_Errors(t *testing.T) {
	_, err := ParseProducts(strings.NewReader("sku,name\nA,B\n"), "")
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Line)
	assert.Contains(t, err.Error(), "unit")

	_, err = ParseProducts(strings.NewReader("sku,name,unit,price\nA,B,PCS,abc\n"), "")
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Line)

	_, err = ParseProducts(strings.NewReader(""), "")
	require.ErrorAs(t, err, &rowErr)

	_, err = ParseProducts(strings.NewReader("sku,name,unit\n"), "ebcdic")
	assert.Error(t, err)
}
