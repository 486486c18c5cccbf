package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

const localLogger = "logger"

// RequestLogger registra cada petición con método, ruta, estado, latencia, request id y usuario.
// Debe ir después de requestid.New() para tener el id disponible.
func RequestLogger(log *logger.Logger) fiber.Handler {
	httpLog := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals("requestid").(string)
		reqLog := httpLog
		if reqID != "" {
			reqLog = httpLog.WithStr("request_id", reqID)
		}
		c.Locals(localLogger, reqLog)

		err := c.Next()
		if err != nil {
			// el ErrorHandler escribe la respuesta; así el estado registrado es el real
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := reqLog.Info()
		switch {
		case status >= 500:
			ev = reqLog.Error()
		case status >= 400:
			ev = reqLog.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}

func requestLogger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
