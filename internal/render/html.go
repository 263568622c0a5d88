package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nubank/butu-chat/internal"
)

// HTMLView writes the conversation as HTML fragments, one element per
// message. Typing indicators are transient and not recorded.
type HTMLView struct {
	mu sync.Mutex
	w  io.Writer
}

func NewHTMLView(w io.Writer) *HTMLView {
	return &HTMLView{w: w}
}

func (v *HTMLView) AppendMessage(sender internal.Sender, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.writeBubble(sender, Escape(content))
}

func (v *HTMLView) AppendImage(sender internal.Sender, name, mime, base64 string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	img := fmt.Sprintf(`<img class="content-img" alt="%s" src="data:%s;base64,%s">`,
		Escape(name), Escape(mime), Escape(base64))
	v.writeBubble(sender, img)
}

func (v *HTMLView) ShowTyping() {}

func (v *HTMLView) HideTyping() {}

func (v *HTMLView) BeginReply() Bubble {
	return &htmlBubble{view: v}
}

func (v *HTMLView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "<div class=\"alert\">%s</div>\n", Escape(msg))
}

func (v *HTMLView) writeBubble(sender internal.Sender, markup string) {
	fmt.Fprintf(v.w, "<div class=\"message %s\"><div class=\"bubble\">%s</div></div>\n", sender, markup)
}

// htmlBubble buffers revealed characters and writes the finished message
// when the cursor goes away.
type htmlBubble struct {
	view *HTMLView
	text strings.Builder
}

func (b *htmlBubble) Reveal(r rune) {
	b.text.WriteRune(r)
}

func (b *htmlBubble) RemoveCursor() {
	b.view.mu.Lock()
	defer b.view.mu.Unlock()
	b.view.writeBubble(internal.SenderBot, Escape(b.text.String()))
}
