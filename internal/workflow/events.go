package workflow

// Event is one inbound occurrence from the messaging channel. The channel
// adapter maps raw updates into these before dispatching.
type Event interface {
	isEvent()
}

// CommandEvent is a slash command, name without the leading slash.
type CommandEvent struct {
	Name string
}

// ButtonEvent is an inline button press carrying its opaque data token.
type ButtonEvent struct {
	Data string
}

// PhotoEvent is an uploaded document photo.
type PhotoEvent struct {
	Image []byte
}

// TextEvent is a plain, non-command text message.
type TextEvent struct {
	Text string
}

func (CommandEvent) isEvent() {}
func (ButtonEvent) isEvent()  {}
func (PhotoEvent) isEvent()   {}
func (TextEvent) isEvent()    {}

// Button is one inline choice attached to a reply. Data is echoed back as
// a ButtonEvent when pressed.
type Button struct {
	Label string
	Data  string
}

// Reply is one outbound message to a user.
type Reply struct {
	Text     string
	Markdown bool
	Buttons  [][]Button
}

// Outbox delivers replies back through the messaging channel.
type Outbox interface {
	Send(chatID int64, r Reply) error
}
