// README: Base handler utilities (JSON helpers, error mapping, ID validation).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"askai/internal/modules/askai"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the IDs this service issues: hex/alnum with hyphens,
// which covers UUIDs and short session handles.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeAskError(c *gin.Context, err error) {
	switch err {
	case askai.ErrBadRequest, askai.ErrUnknownDomain:
		writeError(c, http.StatusBadRequest, err.Error())
	case askai.ErrInsufficientTokens:
		writeError(c, http.StatusTooManyRequests, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
