package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestObserver contrato mínimo que necesita el middleware. Lo implementa *metrics.Collector.
type requestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// ObserveRequests mide la duración de cada petición por ruta registrada (no por URL cruda,
// para no disparar la cardinalidad con IDs).
func ObserveRequests(obs requestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveRequest(c.Route().Path, c.Method(), status, time.Since(start))
		return err
	}
}
