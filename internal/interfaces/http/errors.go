package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain"
)

// detailer lo implementan los errores estructurados del libro de stock.
type detailer interface {
	Details() map[string]any
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: los sentinels más específicos primero.
var errorMappings = []errorMapping{
	{domain.ErrDuplicateProduct, fiber.StatusBadRequest, "DUPLICATE_PRODUCT", "producto repetido en el movimiento"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", "usuario no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "DUPLICATE", "el email ya está registrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
}

// writeError traduce un error de aplicación a la respuesta HTTP. Lo no reconocido es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: m.message}
		var d detailer
		if errors.As(err, &d) {
			body.Message = err.Error()
			body.Details = d.Details()
		} else if m.status != fiber.StatusUnauthorized {
			body.Message = err.Error()
		}
		return c.Status(m.status).JSON(body)
	}
	requestLogger(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler handler de errores de Fiber (rutas inexistentes, límite superado, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusTooManyRequests:
			code = "RATE_LIMITED"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
