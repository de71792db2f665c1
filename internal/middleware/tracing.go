package middleware

import (
	"porchlight/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tracing starts one span per request on the global tracer and records the
// method, path and final status code.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := observability.Tracer.Start(c.UserContext(), c.Method()+" "+c.Path())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.Path()),
		)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
