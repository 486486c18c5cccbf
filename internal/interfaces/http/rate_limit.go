package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
)

// NewRateLimiter limita por IP a max peticiones por ventana. storage permite compartir
// los contadores entre instancias; nil usa el almacén interno de Fiber.
func NewRateLimiter(storage fiber.Storage, max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "rl:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas peticiones, intente más tarde",
			})
		},
	})
}
