package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/nubank/butu-chat/internal"
)

const (
	cursorGlyph = "|"
	clearLine   = "\r\033[K"
)

// TerminalView prints the conversation as lines on a terminal.
type TerminalView struct {
	w       io.Writer
	botName string

	mu     sync.Mutex
	typing bool
}

func NewTerminalView(w io.Writer, botName string) *TerminalView {
	return &TerminalView{w: w, botName: botName}
}

func (v *TerminalView) label(sender internal.Sender) string {
	if sender == internal.SenderBot {
		return v.botName
	}
	return "you"
}

func (v *TerminalView) AppendMessage(sender internal.Sender, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "%s: %s\n", v.label(sender), Sanitize(content))
}

func (v *TerminalView) AppendImage(sender internal.Sender, name, mime, base64 string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	// base64 inflates by 4/3
	kb := (len(base64)*3/4 + 1023) / 1024
	fmt.Fprintf(v.w, "%s: [image %s, %s, %d KB]\n", v.label(sender), Sanitize(name), mime, kb)
}

func (v *TerminalView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.typing {
		return
	}
	v.typing = true
	fmt.Fprintf(v.w, "%s: ...", v.botName)
}

func (v *TerminalView) HideTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.typing {
		return
	}
	v.typing = false
	io.WriteString(v.w, clearLine)
}

func (v *TerminalView) BeginReply() Bubble {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "%s: %s", v.botName, cursorGlyph)
	return &terminalBubble{view: v}
}

func (v *TerminalView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "❌ %s\n", Sanitize(msg))
}

type terminalBubble struct {
	view *TerminalView
}

// Reveal backs over the cursor, prints r and redraws the cursor after it.
func (b *terminalBubble) Reveal(r rune) {
	b.view.mu.Lock()
	defer b.view.mu.Unlock()
	fmt.Fprintf(b.view.w, "\b%s%s", Sanitize(string(r)), cursorGlyph)
}

func (b *terminalBubble) RemoveCursor() {
	b.view.mu.Lock()
	defer b.view.mu.Unlock()
	io.WriteString(b.view.w, "\b \b\n")
}
