package handlers

import (
	"net/http"

	"translation-market/internal/services"

	"github.com/gin-gonic/gin"
)

// writeError maps workflow error kinds onto transport codes. The message
// is the engine's invariant text, safe to surface verbatim.
func writeError(c *gin.Context, err error) {
	kind := services.KindOf(err)

	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error(), "kind": kind}

	switch kind {
	case services.KindPermissionDenied:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindInvalidTransition:
		status = http.StatusConflict
	case services.KindConflict:
		status = http.StatusConflict
		body["retryable"] = true
	case services.KindStoreUnavailable:
		status = http.StatusServiceUnavailable
		body["retryable"] = true
	}

	c.JSON(status, body)
}
