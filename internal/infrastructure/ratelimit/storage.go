// Package ratelimit provee el almacén de contadores del limitador de peticiones.
package ratelimit

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
)

var _ fiber.Storage = (*memory.Storage)(nil)

// NewStorage almacén en memoria del proceso; las claves vencidas se barren cada gcInterval.
// main lo inyecta en el limitador, así puede cambiarse por un fiber.Storage compartido
// (redis, postgres) cuando haya varias réplicas.
func NewStorage(gcInterval time.Duration) *memory.Storage {
	if gcInterval <= 0 {
		gcInterval = time.Minute
	}
	return memory.New(memory.Config{GCInterval: gcInterval})
}
