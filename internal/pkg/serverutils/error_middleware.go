package serverutils

import (
	"askdb-be/internal/apperror"
	"askdb-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts pipeline errors into the stable JSON
// envelope. Only the kind tag and the user-safe message leave the process;
// wrapped driver/model errors stay in the logs.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(Envelope{
				Success: false,
				Message: fe.Message,
			})
		}

		kind := apperror.KindOf(err)
		status := statusFor(kind, apperror.ReasonOf(err))

		if status >= fiber.StatusInternalServerError {
			log.Error("http", "request failed", map[string]interface{}{
				"path":  ctx.Path(),
				"kind":  string(kind),
				"error": err.Error(),
			})
		} else {
			log.Warn("http", "request rejected", map[string]interface{}{
				"path": ctx.Path(),
				"kind": string(kind),
			})
		}

		return ctx.Status(status).JSON(Envelope{
			Success:   false,
			Message:   apperror.MessageOf(err),
			ErrorType: string(kind),
		})
	}
}

func statusFor(kind apperror.Kind, reason apperror.Reason) int {
	switch kind {
	case apperror.KindInvalidInput, apperror.KindUnsafeQueryRejected:
		return fiber.StatusBadRequest
	case apperror.KindNoRelevantSchema:
		return fiber.StatusNotFound
	case apperror.KindSqlGenerationFailed:
		return fiber.StatusBadGateway
	case apperror.KindExecutionFailed:
		switch reason {
		case apperror.ReasonTimeout:
			return fiber.StatusGatewayTimeout
		case apperror.ReasonConnectivity:
			return fiber.StatusServiceUnavailable
		default:
			return fiber.StatusBadGateway
		}
	default:
		return fiber.StatusInternalServerError
	}
}
