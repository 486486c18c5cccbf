package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// StockHandler expone el libro de stock.
type StockHandler struct {
	uc *inventory.StockLedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockLedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// CreateEntry godoc
// @Summary      Registrar asiento de stock
// @Description  IN suma, OUT resta (falla si no alcanza), ADJUSTMENT fija el valor absoluto.
// @Description  Con is_sub_unit la cantidad se convierte a unidad principal (cantidad / conversion_rate).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockEntryRequest  true  "type, items, notes"
// @Success      201   {object}  dto.StockEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) CreateEntry(c *fiber.Ctx) error {
	var in dto.CreateStockEntryRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	out, err := h.uc.CreateEntry(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetEntry godoc
// @Summary      Obtener asiento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      200  {object}  dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/entries/{id} [get]
func (h *StockHandler) GetEntry(c *fiber.Ctx) error {
	out, err := h.uc.GetEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListEntries godoc
// @Summary      Listar asientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "IN, OUT o ADJUSTMENT"
// @Param        product_id  query  string  false  "Asientos que tocan este producto"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to          query  string  false  "Hasta, inclusivo"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockEntryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/entries [get]
func (h *StockHandler) ListEntries(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	page := pageFromQuery(c)
	out, err := h.uc.ListEntries(c.UserContext(), repository.StockEntryFilter{
		Type:      strings.ToUpper(c.Query("type")),
		ProductID: c.Query("product_id"),
		From:      from,
		To:        to,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteEntry godoc
// @Summary      Borrar asiento (solo ADMIN)
// @Description  IN y OUT se revierten (con piso en cero); ADJUSTMENT no restaura el valor previo.
// @Description  Los asientos generados por una factura se borran borrando la factura.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      200  {object}  dto.DeleteStockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/entries/{id} [delete]
func (h *StockHandler) DeleteEntry(c *fiber.Ctx) error {
	out, err := h.uc.DeleteEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
