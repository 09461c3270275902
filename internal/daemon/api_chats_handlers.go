package daemon

import (
	"net/http"
)

// Chats serves the collection: GET lists, POST creates, DELETE and PATCH
// carry the chat id in the JSON body.
func (a *API) Chats(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		chats, err := a.Service.List(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	case http.MethodPost:
		var req CreateChatRequest
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		chat, err := a.Service.Create(r.Context(), userID, req.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, chat)
	case http.MethodDelete:
		var req DeleteChatRequest
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		if err := a.Service.Delete(r.Context(), userID, req.ChatID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case http.MethodPatch:
		var req RenameChatRequest
		if err := decodeBody(r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		if err := a.Service.Rename(r.Context(), userID, req.ChatID, req.NewName); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req SendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	reply, err := a.Service.Send(r.Context(), userIDFromContext(r.Context()), req.ChatID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendMessageResponse{Reply: reply})
}
