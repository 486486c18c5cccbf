package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// BillHandler maneja facturas GST.
type BillHandler struct {
	uc *billing.BillUseCase
}

// NewBillHandler construye el handler.
func NewBillHandler(uc *billing.BillUseCase) *BillHandler {
	return &BillHandler{uc: uc}
}

// Create godoc
// @Summary      Emitir factura
// @Description  Descuenta el stock con un asiento OUT y calcula CGST/SGST o IGST según el estado del cliente.
// @Tags         bills
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBillRequest  true  "party_id, items, notes"
// @Success      201   {object}  dto.BillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/bills [post]
func (h *BillHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBillRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateBill(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         bills
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.BillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [get]
func (h *BillHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetBill(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         bills
// @Security     Bearer
// @Produce      json
// @Param        party_id  query  string  false  "Cliente"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to        query  string  false  "Hasta, inclusivo"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BillListResponse
// @Router       /api/bills [get]
func (h *BillHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	page := pageFromQuery(c)
	out, err := h.uc.ListBills(c.UserContext(), repository.BillFilter{
		PartyID: c.Query("party_id"),
		From:    from,
		To:      to,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Anular factura (solo ADMIN)
// @Description  Borra la factura y revierte su salida de stock.
// @Tags         bills
// @Security     Bearer
// @Param        id   path  string  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [delete]
func (h *BillHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteBill(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
