package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// Response 统一响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// NoContent 无内容响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应
func Error(c *gin.Context, err error) {
	statusCode, code, message := parseError(err)
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// parseError 解析错误类型并返回相应的 HTTP 状态码
func parseError(err error) (statusCode, code int, message string) {
	switch {
	case errors.Is(err, domain.ErrCatalogNotFound),
		errors.Is(err, domain.ErrShareNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrInviteeNotFound):
		return http.StatusNotFound, 404, err.Error()

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, 403, err.Error()

	case errors.Is(err, domain.ErrCatalogNameTaken),
		errors.Is(err, domain.ErrEntryAlreadyLinked),
		errors.Is(err, domain.ErrDuplicateInvitation):
		return http.StatusConflict, 409, err.Error()

	case errors.Is(err, domain.ErrShareNotPending),
		errors.Is(err, domain.ErrInvalidCatalogName),
		errors.Is(err, domain.ErrInvalidDescription),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrCannotInviteOwner),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, 400, err.Error()

	default:
		return http.StatusInternalServerError, 500, "internal server error"
	}
}
