package daemon

import "net/http"

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/api/chats", a.Chats)
	mux.HandleFunc("/api/chat", a.SendMessage)
	mux.HandleFunc("/api/shutdown", a.ShutdownDaemon)
	if a.Metrics != nil {
		mux.Handle("/metrics", a.Metrics.Handler())
	}
}
