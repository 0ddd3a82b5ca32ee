package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
)

// statusFor maps an engine error kind to an HTTP status.
func statusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindForbidden:
		return http.StatusForbidden
	case engine.KindInvalidArgument, engine.KindInvalidState,
		engine.KindSignatureInvalid, engine.KindOrderMismatch:
		return http.StatusBadRequest
	case engine.KindInsufficientSeats, engine.KindAlreadyExists:
		return http.StatusConflict
	case engine.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes the engine error as {kind, error}. Unclassified errors come out
// as a generic internal message, never storage detail.
func fail(c *gin.Context, err error) {
	kind := engine.KindOf(err)
	c.JSON(statusFor(kind), gin.H{
		"kind":  string(kind),
		"error": engine.MessageOf(err),
	})
}
