package hook

// Kind identifies which notifier-facing event an Input was classified into.
type Kind string

const (
	KindNotification Kind = "notification"
	KindSessionEnd   Kind = "session_end"
)

// MessageType classifies the intent of the assistant's last message.
type MessageType string

const (
	MessageQuestion     MessageType = "question"
	MessageConfirmation MessageType = "confirmation"
	MessageChoice       MessageType = "choice"
	MessageInfo         MessageType = "info"
)

// Context is conversation context extracted from the session transcript.
type Context struct {
	LastMessage string      `json:"last_message"`
	MessageType MessageType `json:"message_type"`
}

// Event is the classified, immutable form of an Input handed to notifiers.
// Context is only set for notification events whose transcript yielded a
// usable assistant message.
type Event struct {
	kind    Kind
	input   Input
	context *Context
}

// NewNotificationEvent builds a notification event. ctx may be nil.
func NewNotificationEvent(in Input, ctx *Context) Event {
	var c *Context
	if ctx != nil {
		cp := *ctx
		c = &cp
	}
	return Event{kind: KindNotification, input: in, context: c}
}

// NewSessionEndEvent builds a session-end event from a SessionEnd or Stop input.
func NewSessionEndEvent(in Input) Event {
	return Event{kind: KindSessionEnd, input: in}
}

// Kind returns the event kind.
func (e Event) Kind() Kind { return e.kind }

// Input returns a copy of the originating hook input.
func (e Event) Input() Input { return e.input }

// Context returns a copy of the extracted context and whether one is present.
func (e Event) Context() (Context, bool) {
	if e.context == nil {
		return Context{}, false
	}
	return *e.context, true
}
