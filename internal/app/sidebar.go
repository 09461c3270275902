package app

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"

	"termchat/internal/session"
	"termchat/internal/types"
)

type chatItem struct {
	chat types.Chat
}

func (i chatItem) FilterValue() string {
	return i.chat.Name
}

type chatDelegate struct {
	activeID string
}

func (d chatDelegate) Height() int {
	return 1
}

func (d chatDelegate) Spacing() int {
	return 0
}

func (d chatDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d chatDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(chatItem)
	if !ok {
		return
	}
	fmt.Fprint(w, chatRow(entry.chat, entry.chat.ID == d.activeID, m.Width()))
}

func newChatList(snap session.Snapshot, width, height int) list.Model {
	items := make([]list.Item, 0, len(snap.Chats))
	for _, chat := range snap.Chats {
		items = append(items, chatItem{chat: chat})
	}
	mlist := list.New(items, chatDelegate{activeID: snap.ActiveChatID}, width, height)
	mlist.SetShowTitle(false)
	mlist.SetShowHelp(false)
	mlist.SetFilteringEnabled(false)
	mlist.SetShowPagination(false)
	mlist.SetShowStatusBar(false)
	if idx := activeIndex(snap); idx >= 0 {
		mlist.Select(idx)
	}
	return mlist
}

// renderSidebar draws the chat list. The list pages so the active chat is
// always on screen.
func renderSidebar(snap session.Snapshot, width, height int, spinner string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	inner := max(1, width-2)
	header := "Chats"
	if snap.Loading.LoadingChats || snap.Loading.CreateChat || snap.Loading.Delete {
		header += " " + spinner
	}
	lines := []string{
		" " + headerStyle.Render(padToWidth(truncateToWidth(header, inner), inner)),
		" " + dividerStyle.Render(strings.Repeat("─", inner)),
	}

	visible := max(0, height-len(lines)-1)
	switch {
	case len(snap.Chats) == 0 && snap.Loading.LoadingChats:
		lines = append(lines, " "+statusStyle.Render("loading…"))
	case len(snap.Chats) == 0:
		lines = append(lines, " "+statusStyle.Render("no chats yet"))
	case visible > 0:
		rows := strings.Split(newChatList(snap, inner, visible).View(), "\n")
		for i := 0; i < len(rows) && i < visible; i++ {
			if strings.TrimSpace(rows[i]) == "" {
				continue
			}
			lines = append(lines, " "+rows[i])
		}
	}
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, " "+helpStyle.Render(truncateToWidth(sidebarHint(snap), inner)))
	return strings.Join(lines, "\n")
}

func chatRow(chat types.Chat, active bool, width int) string {
	name := strings.TrimSpace(chat.Name)
	if name == "" {
		name = "(untitled)"
	}
	count := ""
	if chat.MessageCount > 0 {
		count = fmt.Sprintf(" %d", chat.MessageCount)
	}
	label := truncateToWidth(name, max(1, width-2-len(count)))
	row := padToWidth("  "+label, width-len(count)) + count
	switch {
	case active:
		return selectedStyle.Render("▸ " + row[2:])
	case chat.Unused():
		return unusedChatStyle.Render(row)
	default:
		return chatStyle.Render(row)
	}
}

func sidebarHint(snap session.Snapshot) string {
	parts := []string{}
	if snap.CanCreate() {
		parts = append(parts, "^n new")
	}
	if snap.CanDelete() {
		parts = append(parts, "^d del")
	}
	parts = append(parts, "^r ren")
	return strings.Join(parts, " · ")
}

func activeIndex(snap session.Snapshot) int {
	for i, chat := range snap.Chats {
		if chat.ID == snap.ActiveChatID {
			return i
		}
	}
	return -1
}
