package cart

import "time"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notification is a fire-and-forget user message.
type Notification struct {
	Title    string
	Text     string
	Kind     Kind
	Toast    bool
	Duration time.Duration
}

// Notifier surfaces notifications to the user. Implementations must not block
// for long and must not fail; the controller never inspects the outcome.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

const toastDuration = 3 * time.Second

func toast(kind Kind, title, text string) Notification {
	return Notification{Title: title, Text: text, Kind: kind, Toast: true, Duration: toastDuration}
}

func dialog(kind Kind, title, text string) Notification {
	return Notification{Title: title, Text: text, Kind: kind}
}
