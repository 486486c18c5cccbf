// Package catalog importa el catálogo inicial de productos desde CSV (exportaciones de
// hojas de cálculo o del software contable anterior, a menudo en Windows-1252).
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
)

// Columnas reconocidas en la cabecera (sin distinguir mayúsculas).
const (
	colSKU            = "sku"
	colName           = "name"
	colHSN            = "hsn_code"
	colUnit           = "unit"
	colPrice          = "price"
	colGSTRate        = "gst_rate"
	colInitialStock   = "initial_stock"
	colSubUnit        = "sub_unit"
	colConversionRate = "conversion_rate"
	colLowStock       = "low_stock_threshold"
)

var requiredColumns = []string{colSKU, colName, colUnit}

// RowError error de una línea concreta del archivo (1 = cabecera).
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// NewReader envuelve r para decodificar charset a UTF-8. Admite utf-8 (o vacío),
// windows-1252 e iso-8859-1.
func NewReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado: %q", charset)
}

// ParseProducts lee el CSV y devuelve una petición de alta por fila. Las filas vacías se saltan.
func ParseProducts(r io.Reader, charset string) ([]dto.CreateProductRequest, error) {
	decoded, err := NewReader(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &RowError{Line: 1, Err: errors.New("archivo vacío")}
		}
		return nil, &RowError{Line: 1, Err: err}
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, &RowError{Line: 1, Err: fmt.Errorf("falta la columna %s", c)}
		}
	}

	var out []dto.CreateProductRequest
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if blank(rec) {
			continue
		}
		req, err := toRequest(rec, idx)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		out = append(out, req)
	}
	return out, nil
}

func toRequest(rec []string, idx map[string]int) (dto.CreateProductRequest, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	req := dto.CreateProductRequest{
		SKU:     get(colSKU),
		Name:    get(colName),
		HSNCode: get(colHSN),
		Unit:    strings.ToUpper(get(colUnit)),
	}
	var err error
	if req.Price, err = decimalField(colPrice, get(colPrice)); err != nil {
		return req, err
	}
	if req.GSTRate, err = decimalField(colGSTRate, get(colGSTRate)); err != nil {
		return req, err
	}
	if req.InitialStock, err = decimalField(colInitialStock, get(colInitialStock)); err != nil {
		return req, err
	}
	if req.LowStockThreshold, err = decimalField(colLowStock, get(colLowStock)); err != nil {
		return req, err
	}
	if sub := get(colSubUnit); sub != "" {
		rate, err := decimalField(colConversionRate, get(colConversionRate))
		if err != nil {
			return req, err
		}
		req.HasSubUnit = true
		req.SubUnit = &dto.SubUnitDTO{Unit: strings.ToUpper(sub), ConversionRate: rate}
	}
	return req, nil
}

// decimalField acepta separador de miles "," (1,250.50); vacío es cero.
func decimalField(col, raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: valor inválido %s", col, strconv.Quote(raw))
	}
	return d, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
