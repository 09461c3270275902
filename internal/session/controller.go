package session

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"termchat/internal/logging"
	"termchat/internal/types"
)

const (
	defaultChatName       = "New Chat"
	defaultRequestTimeout = 15 * time.Second
)

type ChatAPI interface {
	ListChats(ctx context.Context) ([]types.Chat, error)
	CreateChat(ctx context.Context, name string) (types.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	RenameChat(ctx context.Context, chatID, newName string) error
}

type AuthProvider interface {
	User() (types.Identity, bool)
	OpenSignIn()
}

// Controller owns the chat collection, the active selection and the session
// mode. It is not safe for concurrent use: every method, Update included,
// must run on the bubbletea update loop. Requests run inside the returned
// commands and come back as messages.
type Controller struct {
	api     ChatAPI
	auth    AuthProvider
	logger  logging.Logger
	name    string
	timeout time.Duration

	chats       []types.Chat
	activeID    string
	mode        Mode
	startInput  string
	sidebarOpen bool
	inflight    map[Op]int
	lastErr     *OperationError

	// fetchedFor is the identity the collection was last requested for.
	fetchedFor string
}

type Option func(*Controller)

func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithDefaultChatName(name string) Option {
	return func(c *Controller) {
		if name = strings.TrimSpace(name); name != "" {
			c.name = name
		}
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithSidebarOpen(open bool) Option {
	return func(c *Controller) {
		c.sidebarOpen = open
	}
}

func NewController(api ChatAPI, auth AuthProvider, opts ...Option) *Controller {
	c := &Controller{
		api:         api,
		auth:        auth,
		logger:      logging.Nop(),
		name:        defaultChatName,
		timeout:     defaultRequestTimeout,
		mode:        ModeLanding,
		sidebarOpen: true,
		inflight:    map[Op]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Chats:        types.CloneChats(c.chats),
		Loading:      c.loading(),
		ActiveChatID: c.activeID,
		Mode:         c.mode,
		StartInput:   c.startInput,
		SidebarOpen:  c.sidebarOpen,
		LastError:    c.lastErr,
	}
}

func (c *Controller) loading() Loading {
	return Loading{
		LoadingChats: c.inflight[OpFetch] > 0,
		CreateChat:   c.inflight[OpCreate] > 0,
		Delete:       c.inflight[OpDelete] > 0,
	}
}

// CreateChat selects an existing unused chat when there is one; otherwise it
// asks the API for a new chat. At most one unused chat is kept locally.
func (c *Controller) CreateChat() tea.Cmd {
	for _, chat := range c.chats {
		if chat.Unused() {
			c.logger.Debug("reusing unused chat", logging.F("chat_id", chat.ID))
			c.activeID = chat.ID
			return nil
		}
	}
	user, _ := c.currentUser()
	c.begin(OpCreate)
	return createChatCmd(c.api, user.ID, c.name, c.timeout)
}

func (c *Controller) DeleteChat(chatID string) tea.Cmd {
	c.begin(OpDelete)
	return deleteChatCmd(c.api, chatID, c.timeout)
}

// RenameChat does not validate newName and sets no loading flag.
func (c *Controller) RenameChat(chatID, newName string) tea.Cmd {
	return renameChatCmd(c.api, chatID, newName, c.timeout)
}

// FetchChats requests the full collection for the current user. Without a
// user there is nothing to fetch.
func (c *Controller) FetchChats() tea.Cmd {
	user, ok := c.currentUser()
	if !ok {
		return nil
	}
	c.fetchedFor = user.ID
	c.begin(OpFetch)
	return fetchChatsCmd(c.api, user.ID, c.timeout)
}

func (c *Controller) SetActiveChatID(chatID string) {
	c.activeID = chatID
}

// OnMessageSent is the only local path that changes MessageCount.
func (c *Controller) OnMessageSent(chatID string) {
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			c.chats[i].MessageCount++
			return
		}
	}
}

func (c *Controller) ToggleSidebar() {
	c.sidebarOpen = !c.sidebarOpen
}

func (c *Controller) SetStartInput(text string) {
	if c.mode != ModeLanding {
		return
	}
	c.startInput = text
}

func (c *Controller) DismissError() {
	c.lastErr = nil
}

// SubmitStartPrompt moves landing to active. Without a signed-in user the
// sign-in flow is opened and nothing else changes.
func (c *Controller) SubmitStartPrompt(text string) tea.Cmd {
	if c.mode != ModeLanding {
		return nil
	}
	if _, ok := c.currentUser(); !ok {
		c.logger.Info("start prompt needs sign in")
		if c.auth != nil {
			c.auth.OpenSignIn()
		}
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c.startInput = text
	c.mode = ModeActive
	c.logger.Info("session active")
	return c.FetchChats()
}

// IdentityChanged re-evaluates the signed-in user. A new identity in active
// mode drops the previous user's collection and fetches again.
func (c *Controller) IdentityChanged() tea.Cmd {
	if c.mode != ModeActive {
		return nil
	}
	user, ok := c.currentUser()
	if !ok {
		if c.fetchedFor != "" {
			c.logger.Info("signed out, clearing chats")
			c.resetCollection()
		}
		return nil
	}
	if user.ID == c.fetchedFor {
		return nil
	}
	if c.fetchedFor != "" {
		c.resetCollection()
	}
	c.logger.Info("identity changed, fetching chats", logging.F("user_id", user.ID))
	return c.FetchChats()
}

func (c *Controller) resetCollection() {
	c.chats = nil
	c.activeID = ""
	c.fetchedFor = ""
	c.lastErr = nil
}

func (c *Controller) currentUser() (types.Identity, bool) {
	if c.auth == nil {
		return types.Identity{}, false
	}
	user, ok := c.auth.User()
	if !ok || user.Empty() {
		return types.Identity{}, false
	}
	return user, true
}

func (c *Controller) begin(op Op) {
	c.inflight[op]++
}

func (c *Controller) end(op Op) {
	if c.inflight[op] > 0 {
		c.inflight[op]--
	}
}
