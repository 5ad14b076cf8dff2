package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
)

// Serve upgrades the request and streams snapshots for userID until the client leaves.
// initial is sent first so the client never waits for the next change.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string, initial domain.Snapshot, originPatterns []string) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
	if err != nil {
		h.logger.Warn("websocket accept failed", slog.String("user.id", userID), slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	data, err := json.Marshal(initial)
	if err != nil {
		conn.Close(ws.StatusInternalError, "snapshot unavailable")
		return
	}
	NewClient(h, userID, conn).Run(r.Context(), data)
	conn.Close(ws.StatusNormalClosure, "")
}
