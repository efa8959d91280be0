package serverutils

import (
	"fmt"
	"strings"

	"askdb-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorType string      `json:"error_type,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidateRequest checks struct tags and converts violations into the
// InvalidInput kind so the error middleware renders a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
		}
		msg := "invalid request"
		if len(fields) > 0 {
			msg = "invalid request: " + strings.Join(fields, ", ")
		}
		return apperror.Wrap(apperror.KindInvalidInput, msg, err)
	}
	return nil
}
