package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

// RequestLogger registra método, ruta, status y duración de cada request.
func RequestLogger(log *logger.Logger) fiber.Handler {
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

		ev := log.WithContext(c.UserContext()).Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.WithContext(c.UserContext()).Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}
