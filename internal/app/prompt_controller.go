package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSignIn
	promptRename
)

type promptResult int

const (
	promptPending promptResult = iota
	promptSubmitted
	promptCanceled
)

const promptWidth = 48

// PromptController is a single-line input dialog used for the sign-in token
// and for renaming a chat.
type PromptController struct {
	kind   promptKind
	title  string
	hint   string
	chatID string
	input  textinput.Model
}

func NewPromptController() *PromptController {
	return &PromptController{}
}

func (p *PromptController) IsOpen() bool {
	return p != nil && p.kind != promptNone
}

func (p *PromptController) Kind() promptKind {
	if p == nil {
		return promptNone
	}
	return p.kind
}

// ChatID is the chat a rename prompt was opened for.
func (p *PromptController) ChatID() string {
	if p == nil {
		return ""
	}
	return p.chatID
}

func (p *PromptController) OpenSignIn() {
	p.open(promptSignIn, "Sign in", "Paste your API token, enter to save, esc to cancel", "")
	p.input.EchoMode = textinput.EchoPassword
	p.input.EchoCharacter = '•'
	p.input.Placeholder = "token"
}

func (p *PromptController) OpenRename(chatID, current string) {
	p.open(promptRename, "Rename chat", "enter to save, esc to cancel", current)
	p.chatID = chatID
}

func (p *PromptController) open(kind promptKind, title, hint, value string) {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 256
	input.SetWidth(promptWidth - 4)
	input.SetValue(value)
	input.CursorEnd()
	_ = input.Focus()
	*p = PromptController{kind: kind, title: title, hint: hint, input: input}
}

func (p *PromptController) Close() {
	if p == nil {
		return
	}
	*p = PromptController{}
}

func (p *PromptController) Value() string {
	return p.input.Value()
}

func (p *PromptController) Update(msg tea.Msg) (promptResult, tea.Cmd) {
	if !p.IsOpen() {
		return promptPending, nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc":
			return promptCanceled, nil
		case "enter":
			return promptSubmitted, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return promptPending, cmd
}

func (p *PromptController) View() string {
	if !p.IsOpen() {
		return ""
	}
	lines := []string{
		headerStyle.Render(p.title),
		p.input.View(),
		helpStyle.Render(strings.TrimSpace(p.hint)),
	}
	return promptDialogBorderStyle.Width(promptWidth).Render(strings.Join(lines, "\n"))
}
