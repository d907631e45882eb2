package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-service/pkg/errno"
)

// Response 统一响应包裹
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed 返回错误响应，业务错误码映射为合适的HTTP状态
func Failed(ctx *gin.Context, err error) {
	en, ok := err.(*errno.Errno)
	if !ok {
		en = errno.ErrInternalServer.WithMessage("%s", err.Error())
	}
	ctx.JSON(httpStatus(en), Response{
		Code:    en.Code,
		Message: en.Message,
	})
}

func httpStatus(en *errno.Errno) int {
	switch en.Code {
	case errno.ErrValidation.Code, errno.ErrMissingParam.Code, errno.ErrSourceRefRequired.Code,
		errno.ErrOwnerRequired.Code, errno.ErrBatchEmpty.Code, errno.ErrBatchTooLarge.Code,
		errno.ErrInvalidFormat.Code, errno.ErrTargetLangRequired.Code:
		return http.StatusBadRequest
	case errno.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case errno.ErrForbidden.Code, errno.ErrJobNotOwned.Code:
		return http.StatusForbidden
	case errno.ErrNotFound.Code, errno.ErrJobNotFound.Code:
		return http.StatusNotFound
	case errno.ErrConflict.Code, errno.ErrJobTerminal.Code, errno.ErrJobNotTerminal.Code,
		errno.ErrJobNotCompleted.Code, errno.ErrNoTranscript.Code:
		return http.StatusConflict
	case errno.ErrQueueFull.Code:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
