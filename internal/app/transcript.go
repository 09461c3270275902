package app

import (
	"strings"
)

type entryRole int

const (
	roleUser entryRole = iota
	roleAssistant
)

type transcriptEntry struct {
	role    entryRole
	text    string
	pending bool
	failed  bool
}

// transcripts holds the in-memory exchange per chat. Nothing here is
// persisted; the server owns message history.
type transcripts map[string][]transcriptEntry

func (t transcripts) appendUser(chatID, text string) {
	t[chatID] = append(t[chatID], transcriptEntry{role: roleUser, text: text, pending: true})
}

// resolve settles the oldest pending user entry with the given text and
// appends the reply when the send succeeded.
func (t transcripts) resolve(chatID, text, reply string, failed bool) {
	entries := t[chatID]
	for i := range entries {
		if entries[i].role == roleUser && entries[i].pending && entries[i].text == text {
			entries[i].pending = false
			entries[i].failed = failed
			break
		}
	}
	if !failed {
		entries = append(entries, transcriptEntry{role: roleAssistant, text: reply})
	}
	t[chatID] = entries
}

func (t transcripts) drop(chatID string) {
	delete(t, chatID)
}

func (t transcripts) render(chatID string, width int) string {
	entries := t[chatID]
	if len(entries) == 0 {
		return userStatusStyle.Render("No messages yet. Type below and press enter.")
	}
	bubbleWidth := max(minSessionWide, width-2)
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch entry.role {
		case roleUser:
			style := userBubbleStyle
			if entry.failed {
				style = failedBubbleStyle
			}
			block := style.Width(bubbleWidth).Render(entry.text)
			if entry.pending {
				block += "\n" + userStatusStyle.Render("sending…")
			} else if entry.failed {
				block += "\n" + statusErrorStyle.Render("not sent")
			}
			blocks = append(blocks, block)
		default:
			body := renderMarkdown(entry.text, max(1, bubbleWidth-4))
			blocks = append(blocks, agentBubbleStyle.Width(bubbleWidth).Render(body))
		}
	}
	return strings.Join(blocks, "\n")
}
