package response

import "github.com/gofiber/fiber/v3"

// Recommendation payloads are returned unwrapped; this envelope is only for
// errors and service status bodies.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageNotFound            = "not found"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

func Error(c fiber.Ctx, status int, message string) error {
	st := normalizeStatus(status)
	msg := message
	if msg == "" {
		msg = defaultMessageForStatus(st)
	}
	return c.Status(st).JSON(ErrorResponse{Status: st, Message: msg})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusNotFound:
		return MessageNotFound
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
