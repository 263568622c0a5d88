// Package rendertest provides a View that records every call, for tests.
package rendertest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nubank/butu-chat/internal"
	"github.com/nubank/butu-chat/internal/render"
)

// Recorder is a render.View that logs calls as short event strings:
//
//	append:<sender>:<content>   image:<sender>:<name>:<mime>
//	show-typing  hide-typing  begin-reply  reveal:<r>  remove-cursor  alert:<msg>
type Recorder struct {
	mu     sync.Mutex
	events []string
	// replies holds the text of every finished bubble.
	replies []string
}

var _ render.View = (*Recorder)(nil)

func New() *Recorder { return &Recorder{} }

func (r *Recorder) record(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]string, len(r.events))
	copy(cp, r.events)
	return cp
}

// Count returns how many recorded events equal e or, when e ends in ':', start with it.
func (r *Recorder) Count(e string) int {
	n := 0
	for _, got := range r.Events() {
		if got == e || (strings.HasSuffix(e, ":") && strings.HasPrefix(got, e)) {
			n++
		}
	}
	return n
}

func (r *Recorder) Replies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]string, len(r.replies))
	copy(cp, r.replies)
	return cp
}

func (r *Recorder) AppendMessage(sender internal.Sender, content string) {
	r.record(fmt.Sprintf("append:%s:%s", sender, content))
}

func (r *Recorder) AppendImage(sender internal.Sender, name, mime, _ string) {
	r.record(fmt.Sprintf("image:%s:%s:%s", sender, name, mime))
}

func (r *Recorder) ShowTyping() { r.record("show-typing") }

func (r *Recorder) HideTyping() { r.record("hide-typing") }

func (r *Recorder) BeginReply() render.Bubble {
	r.record("begin-reply")
	return &bubble{rec: r}
}

func (r *Recorder) Alert(msg string) { r.record("alert:" + msg) }

type bubble struct {
	rec  *Recorder
	text strings.Builder
}

func (b *bubble) Reveal(c rune) {
	b.text.WriteRune(c)
	b.rec.record("reveal:" + string(c))
}

func (b *bubble) RemoveCursor() {
	b.rec.record("remove-cursor")
	b.rec.mu.Lock()
	b.rec.replies = append(b.rec.replies, b.text.String())
	b.rec.mu.Unlock()
}
