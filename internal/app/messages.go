package app

// IdentityChangedMsg tells the model the signed-in user may have changed.
// The token watcher sends it from outside the program.
type IdentityChangedMsg struct{}

type messageSentMsg struct {
	chatID string
	text   string
	reply  string
	err    error
}
