package app

import (
	"math/rand/v2"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"termchat/internal/logging"
	"termchat/internal/session"
)

const defaultSendTimeout = 60 * time.Second

type Options struct {
	Placeholders []string
	SendTimeout  time.Duration
	Logger       logging.Logger
}

type Model struct {
	session  *session.Controller
	auth     Auth
	messages MessageAPI
	logger   logging.Logger
	timeout  time.Duration

	width  int
	height int

	landing  textinput.Model
	compose  textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	prompt   *PromptController
	confirm  *ConfirmController

	// deleteTarget is the chat the open confirm dialog would delete.
	deleteTarget string
	// pendingSubmit re-submits the landing prompt once sign-in succeeds.
	pendingSubmit bool
	starterUsed   bool
	transcripts   transcripts
	renderedChat  string

	status      string
	statusError bool
}

func NewModel(controller *session.Controller, auth Auth, messages MessageAPI, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	landing := textinput.New()
	landing.Prompt = "› "
	landing.CharLimit = 2000
	landing.SetWidth(landingWidth - 6)
	landing.Placeholder = pickPlaceholder(opts.Placeholders)
	_ = landing.Focus()

	compose := textinput.New()
	compose.Prompt = "› "
	compose.CharLimit = 4000
	compose.Placeholder = "Send a message"

	m := &Model{
		session:     controller,
		auth:        auth,
		messages:    messages,
		logger:      logger,
		timeout:     timeout,
		landing:     landing,
		compose:     compose,
		viewport:    viewport.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		prompt:      NewPromptController(),
		confirm:     NewConfirmController(),
		transcripts: transcripts{},
	}
	if auth != nil {
		auth.SetSignInHandler(m.openSignIn)
	}
	return m
}

func pickPlaceholder(placeholders []string) string {
	if len(placeholders) == 0 {
		return "Ask anything"
	}
	return placeholders[rand.IntN(len(placeholders))]
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.session.Update(msg) {
		m.afterSessionChange()
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case IdentityChangedMsg:
		return m, m.onIdentityChanged()
	case messageSentMsg:
		m.applyMessageSent(msg)
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.confirm.IsOpen() {
		return m.handleConfirmKey(msg)
	}
	if m.prompt.IsOpen() {
		return m.handlePromptKey(msg)
	}
	if m.session.Snapshot().Mode == session.ModeLanding {
		return m.handleLandingKey(msg)
	}
	return m.handleActiveKey(msg)
}

func (m *Model) handleLandingKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.submitLanding()
	case "esc":
		m.clearStatus()
		return nil
	}
	var cmd tea.Cmd
	m.landing, cmd = m.landing.Update(msg)
	m.session.SetStartInput(m.landing.Value())
	return cmd
}

func (m *Model) submitLanding() tea.Cmd {
	text := m.landing.Value()
	// Without a user the controller opens the sign-in prompt, even for a
	// blank prompt.
	if m.signedIn() && strings.TrimSpace(text) == "" {
		m.setStatusError("type a question to start")
		return nil
	}
	m.pendingSubmit = true
	cmd := m.session.SubmitStartPrompt(text)
	if m.session.Snapshot().Mode == session.ModeActive {
		m.pendingSubmit = false
		m.enterActive()
	}
	return cmd
}

func (m *Model) enterActive() {
	m.landing.Blur()
	_ = m.compose.Focus()
	m.clearStatus()
	m.resize(m.width, m.height)
	m.afterSessionChange()
}

func (m *Model) handleActiveKey(msg tea.KeyPressMsg) tea.Cmd {
	snap := m.session.Snapshot()
	switch msg.String() {
	case "ctrl+n":
		if !snap.CanCreate() {
			return nil
		}
		cmd := m.session.CreateChat()
		m.afterSessionChange()
		return cmd
	case "ctrl+d":
		chat, ok := snap.ActiveChat()
		if !ok || !snap.CanDelete() {
			return nil
		}
		m.deleteTarget = chat.ID
		m.confirm.Open("Delete chat", "Delete \""+displayName(chat.Name)+"\"?", "Delete", "Cancel")
		return nil
	case "ctrl+r":
		chat, ok := snap.ActiveChat()
		if !ok {
			return nil
		}
		m.prompt.OpenRename(chat.ID, chat.Name)
		return nil
	case "ctrl+b":
		m.session.ToggleSidebar()
		m.resize(m.width, m.height)
		return nil
	case "ctrl+l":
		return m.session.FetchChats()
	case "ctrl+y":
		m.copyActiveChatID(snap)
		return nil
	case "up":
		m.moveSelection(snap, -1)
		return nil
	case "down":
		m.moveSelection(snap, 1)
		return nil
	case "pgup":
		m.viewport.HalfPageUp()
		return nil
	case "pgdown":
		m.viewport.HalfPageDown()
		return nil
	case "esc":
		m.session.DismissError()
		m.clearStatus()
		return nil
	case "enter":
		return m.sendCompose(snap)
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) tea.Cmd {
	_, choice := m.confirm.HandleKey(msg)
	switch choice {
	case confirmChoiceConfirm:
		target := m.deleteTarget
		m.confirm.Close()
		m.deleteTarget = ""
		return m.session.DeleteChat(target)
	case confirmChoiceCancel:
		m.confirm.Close()
		m.deleteTarget = ""
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyPressMsg) tea.Cmd {
	result, cmd := m.prompt.Update(msg)
	switch result {
	case promptCanceled:
		if m.prompt.Kind() == promptSignIn {
			m.pendingSubmit = false
		}
		m.prompt.Close()
		return nil
	case promptSubmitted:
		return m.submitPrompt()
	}
	return cmd
}

func (m *Model) submitPrompt() tea.Cmd {
	switch m.prompt.Kind() {
	case promptSignIn:
		token := strings.TrimSpace(m.prompt.Value())
		if token == "" {
			return nil
		}
		if m.auth == nil {
			m.prompt.Close()
			return nil
		}
		if err := m.auth.SignIn(token); err != nil {
			m.logger.Warn("sign in failed", logging.F("error", err))
			m.setStatusError("sign in failed: " + err.Error())
			return nil
		}
		m.prompt.Close()
		m.setStatus("signed in")
		return identityChangedCmd()
	case promptRename:
		chatID, name := m.prompt.ChatID(), m.prompt.Value()
		m.prompt.Close()
		return m.session.RenameChat(chatID, name)
	}
	return nil
}

func (m *Model) signedIn() bool {
	if m.auth == nil {
		return false
	}
	_, ok := m.auth.User()
	return ok
}

func (m *Model) openSignIn() {
	m.prompt.OpenSignIn()
}

func (m *Model) onIdentityChanged() tea.Cmd {
	if m.session.Snapshot().Mode == session.ModeLanding {
		if !m.pendingSubmit || !m.signedIn() {
			return nil
		}
		return m.submitLanding()
	}
	cmd := m.session.IdentityChanged()
	m.afterSessionChange()
	return cmd
}

func (m *Model) sendCompose(snap session.Snapshot) tea.Cmd {
	text := strings.TrimSpace(m.compose.Value())
	if text == "" {
		return nil
	}
	chat, ok := snap.ActiveChat()
	if !ok {
		m.setStatusError("create a chat first (ctrl+n)")
		return nil
	}
	if m.messages == nil {
		return nil
	}
	m.compose.Reset()
	m.transcripts.appendUser(chat.ID, text)
	m.refreshViewport(true)
	return sendMessageCmd(m.messages, chat.ID, text, m.timeout)
}

func (m *Model) applyMessageSent(msg messageSentMsg) {
	if msg.err != nil {
		m.logger.Warn("send message failed", logging.F("chat_id", msg.chatID), logging.F("error", msg.err))
		m.transcripts.resolve(msg.chatID, msg.text, "", true)
		m.setStatusError("send failed: " + msg.err.Error())
	} else {
		m.transcripts.resolve(msg.chatID, msg.text, msg.reply, false)
		m.session.OnMessageSent(msg.chatID)
	}
	if msg.chatID == m.session.Snapshot().ActiveChatID {
		m.refreshViewport(true)
	}
}

func (m *Model) moveSelection(snap session.Snapshot, delta int) {
	if len(snap.Chats) == 0 {
		return
	}
	idx := activeIndex(snap) + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(snap.Chats) {
		idx = len(snap.Chats) - 1
	}
	m.session.SetActiveChatID(snap.Chats[idx].ID)
	m.afterSessionChange()
}

func (m *Model) copyActiveChatID(snap session.Snapshot) {
	if snap.ActiveChatID == "" {
		return
	}
	if _, err := copyTextToClipboard(snap.ActiveChatID); err != nil {
		m.setStatusError("copy failed: " + err.Error())
		return
	}
	m.setStatus("copied chat id")
}

// afterSessionChange keeps UI-owned state in line with the controller: the
// starter message, transcripts of deleted chats and the viewport.
func (m *Model) afterSessionChange() {
	snap := m.session.Snapshot()
	if snap.Mode != session.ModeActive {
		return
	}
	if !m.starterUsed && snap.ActiveChatID != "" {
		m.starterUsed = true
		if m.compose.Value() == "" {
			m.compose.SetValue(snap.StartInput)
			m.compose.CursorEnd()
		}
	}
	live := make(map[string]struct{}, len(snap.Chats))
	for _, chat := range snap.Chats {
		live[chat.ID] = struct{}{}
	}
	for chatID := range m.transcripts {
		if _, ok := live[chatID]; !ok && !snap.Loading.LoadingChats {
			m.transcripts.drop(chatID)
		}
	}
	if snap.ActiveChatID != m.renderedChat {
		m.refreshViewport(true)
	}
}

func (m *Model) refreshViewport(bottom bool) {
	snap := m.session.Snapshot()
	m.renderedChat = snap.ActiveChatID
	if snap.ActiveChatID == "" {
		m.viewport.SetContent(userStatusStyle.Render("No chat selected. Press ctrl+n to start one."))
		return
	}
	m.viewport.SetContent(m.transcripts.render(snap.ActiveChatID, m.viewport.Width()))
	if bottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.prompt.IsOpen():
		_, cmd = m.prompt.Update(msg)
	case m.session.Snapshot().Mode == session.ModeLanding:
		m.landing, cmd = m.landing.Update(msg)
	default:
		m.compose, cmd = m.compose.Update(msg)
	}
	return cmd
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusError = false
}

func (m *Model) setStatusError(text string) {
	m.status = text
	m.statusError = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusError = false
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
