// README: SSE subscribe handler; bridges session pub/sub onto the wire format.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"askai/internal/modules/askai"
)

type SubscribeHandler struct {
	events    *askai.Publisher
	keepAlive time.Duration
}

func NewSubscribeHandler(events *askai.Publisher, keepAlive time.Duration) *SubscribeHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &SubscribeHandler{events: events, keepAlive: keepAlive}
}

// Stream handles GET /api/askai/subscribe?session=<id>.
// Each published entity goes out as one `data: <json>` frame terminated by a
// blank line; idle periods are padded with bare blank lines so intermediaries
// keep the connection open. The response has no deadline; it ends only when
// the client goes away.
func (h *SubscribeHandler) Stream(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session"))
	if sessionID == "" || !isValidID(sessionID) {
		writeError(c, http.StatusBadRequest, "invalid session")
		return
	}

	ctx := c.Request.Context()
	sub := h.events.Subscribe(ctx, sessionID)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", msg.Payload); err != nil {
				log.Debug().Err(err).Str("session", sessionID).Msg("subscriber write failed")
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, "\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
