package render

import "github.com/nubank/butu-chat/internal"

// View is the conversation surface. Implementations keep the latest content
// visible after every append and every revealed character.
type View interface {
	// AppendMessage adds a complete message. content is plain text; the view
	// escapes it for its own medium.
	AppendMessage(sender internal.Sender, content string)
	// AppendImage adds an image the user attached.
	AppendImage(sender internal.Sender, name, mime, base64 string)
	// ShowTyping and HideTyping are idempotent.
	ShowTyping()
	HideTyping()
	// BeginReply opens an empty bot bubble with a cursor.
	BeginReply() Bubble
	// Alert reports rejected input to the user.
	Alert(msg string)
}

// Bubble receives a reply one character at a time.
type Bubble interface {
	Reveal(r rune)
	RemoveCursor()
}

// MultiView fans every call out to several views.
func MultiView(views ...View) View {
	return multiView(views)
}

type multiView []View

func (m multiView) AppendMessage(sender internal.Sender, content string) {
	for _, v := range m {
		v.AppendMessage(sender, content)
	}
}

func (m multiView) AppendImage(sender internal.Sender, name, mime, base64 string) {
	for _, v := range m {
		v.AppendImage(sender, name, mime, base64)
	}
}

func (m multiView) ShowTyping() {
	for _, v := range m {
		v.ShowTyping()
	}
}

func (m multiView) HideTyping() {
	for _, v := range m {
		v.HideTyping()
	}
}

func (m multiView) BeginReply() Bubble {
	bubbles := make(multiBubble, 0, len(m))
	for _, v := range m {
		bubbles = append(bubbles, v.BeginReply())
	}
	return bubbles
}

func (m multiView) Alert(msg string) {
	for _, v := range m {
		v.Alert(msg)
	}
}

type multiBubble []Bubble

func (m multiBubble) Reveal(r rune) {
	for _, b := range m {
		b.Reveal(r)
	}
}

func (m multiBubble) RemoveCursor() {
	for _, b := range m {
		b.RemoveCursor()
	}
}
