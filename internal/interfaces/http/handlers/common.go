// Package handlers contains the gin HTTP handlers for the docrisk API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// errorBody is the uniform error envelope returned by every endpoint.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError maps an application error onto an HTTP status and the uniform
// error envelope.
func writeError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)

	body := errorBody{Code: code.String(), Message: "internal error"}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		body.Message = ae.Message
		body.Detail = ae.Detail
	} else if err != nil {
		body.Message = err.Error()
	}

	c.JSON(statusFor(code), gin.H{"error": body})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeMalformedInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.CodeUnavailable, apperrors.CodeBackingUnavailable,
		apperrors.CodeNoDataSource, apperrors.CodeSnapshotUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
