package daemon

import (
	"context"
	"net/http"
	"time"

	"termchat/internal/logging"
)

// ShutdownDaemon stops a server started in the background by `ui --local`.
func (a *API) ShutdownDaemon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if a.Shutdown == nil {
		writeServiceError(w, unavailable("shutdown not available", nil))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("shutdown_failed", logging.F("error", err))
		}
	}()
}
