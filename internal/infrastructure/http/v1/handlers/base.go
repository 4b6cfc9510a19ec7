// Package handlers provides HTTP request handlers.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"restostock/internal/core/apperror"
	appctx "restostock/internal/core/context"
	"restostock/internal/core/id"
	"restostock/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for endpoints whose body may be absent. An
// empty body, including an empty chunked one, leaves obj untouched.
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// PathID parses the named path parameter as an id.
func (h *BaseHandler) PathID(c *gin.Context, name string) (id.ID, bool) {
	v, err := dto.ParseID(name, c.Param(name))
	if err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return v, true
}

// Error registers error on Gin context and aborts request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// UserID returns the caller identity from the request context.
func (h *BaseHandler) UserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
