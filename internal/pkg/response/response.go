package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes. Validation failures keep distinct codes so callers can
// branch on cause.
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeResourceNotFound = 1001
	CodeAlreadyExists    = 1002
	CodeUnprocessable    = 1003
	CodeServerError      = 5000
)

var codeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeParamError:       "invalid request",
	CodeResourceNotFound: "resource not found",
	CodeAlreadyExists:    "resource already exists",
	CodeUnprocessable:    "the supplied data has errors and cannot be processed",
	CodeServerError:      "internal server error",
}

// Response is the unified envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

func httpStatus(code int) int {
	switch code {
	case CodeParamError:
		return http.StatusBadRequest
	case CodeResourceNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusForbidden
	case CodeUnprocessable:
		return http.StatusUnprocessableEntity
	case CodeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

func AlreadyExistsError(c *gin.Context, message string) {
	Error(c, CodeAlreadyExists, message)
}

func UnprocessableError(c *gin.Context, message string) {
	Error(c, CodeUnprocessable, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
