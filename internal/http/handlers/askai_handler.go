// README: Ask AI query and history handlers (token-guarded extraction).
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"askai/internal/modules/askai"
	"askai/internal/modules/preference"
)

type AskAIHandler struct {
	askai *askai.Service
}

func NewAskAIHandler(svc *askai.Service) *AskAIHandler {
	return &AskAIHandler{askai: svc}
}

type askReq struct {
	UID       string `json:"uid"`
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Domain    string `json:"domain"`
}

type askResp struct {
	QueryID     string  `json:"query_id"`
	Destination *string `json:"destination,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// Query handles POST /api/askai/query.
func (h *AskAIHandler) Query(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.UID = strings.TrimSpace(req.UID)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.UID == "" || req.SessionID == "" || strings.TrimSpace(req.Query) == "" {
		writeError(c, http.StatusBadRequest, "missing uid, session_id or query")
		return
	}
	if !isValidID(req.UID) || !isValidID(req.SessionID) {
		writeError(c, http.StatusBadRequest, "invalid uid or session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	q, err := h.askai.Ask(ctx, askai.AskRequest{
		UID:       req.UID,
		SessionID: req.SessionID,
		Query:     req.Query,
		Domain:    preference.Domain(req.Domain),
	})
	if err != nil {
		writeAskError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, askResp{
		QueryID:     q.ID,
		Destination: q.Destination,
		CreatedAt:   q.CreatedAt.Format(time.RFC3339),
	})
}

type historyItem struct {
	QueryID     string  `json:"query_id"`
	Domain      string  `json:"domain"`
	Query       string  `json:"query"`
	Destination *string `json:"destination,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// History handles GET /api/askai/history?uid=...&limit=...
func (h *AskAIHandler) History(c *gin.Context) {
	uid := strings.TrimSpace(c.Query("uid"))
	if uid == "" || !isValidID(uid) {
		writeError(c, http.StatusBadRequest, "invalid uid")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	queries, err := h.askai.History(ctx, uid, limit)
	if err != nil {
		writeAskError(c, err)
		return
	}

	items := make([]historyItem, 0, len(queries))
	for _, q := range queries {
		items = append(items, historyItem{
			QueryID:     q.ID,
			Domain:      q.Domain,
			Query:       q.Query,
			Destination: q.Destination,
			CreatedAt:   q.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"queries": items})
}
