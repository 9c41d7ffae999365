package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
)

// Response is the success envelope: the payload lives under "data".
type Response struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the failure envelope returned by the permissions service.
type ErrorResponse struct {
	Errors []ErrorInfo `json:"errors"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Message    string         `json:"message"`
	Extensions ErrorExtension `json:"extensions"`
}

// ErrorExtension carries the machine readable error code.
type ErrorExtension struct {
	Code string `json:"code"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Data: data})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, NewErrorResponse(appErr))
}

// NewErrorResponse renders an AppError into the failure envelope.
func NewErrorResponse(appErr *appErrors.AppError) ErrorResponse {
	return ErrorResponse{
		Errors: []ErrorInfo{{
			Message:    appErr.Message,
			Extensions: ErrorExtension{Code: appErr.Code},
		}},
	}
}

// AppError converts the first entry of a failure envelope back into an AppError.
// It returns nil when the envelope is empty.
func (r ErrorResponse) AppError(statusCode int) *appErrors.AppError {
	if len(r.Errors) == 0 {
		return nil
	}

	first := r.Errors[0]
	code := first.Extensions.Code
	if code == "" {
		code = appErrors.ErrInternalServer.Code
	}
	return appErrors.New(code, first.Message, statusCode)
}
