// Package responder answers small talk locally so the remote model is only
// called when needed.
package responder

import (
	"fmt"
	"strings"

	"github.com/nubank/butu-chat/internal/store"
)

const (
	namePrefix     = "my name is"
	askName        = "what is my name"
	askLastMessage = "what did i say last"
)

type Responder struct {
	table *Table
}

func New(table *Table) *Responder {
	if table == nil {
		table = DefaultTable()
	}
	return &Responder{table: table}
}

// Normalize lowercases and trims a message for matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Respond answers text from session memory or the reply table. ok is false
// when the message has to go to the remote model. Canned replies are skipped
// when an image accompanies the message.
//
// The caller stores the message as the last one before calling Respond, so
// "what did I say last" reports the query itself.
func (r *Responder) Respond(sess *store.Session, text string, hasImage bool) (reply string, ok bool) {
	text = strings.TrimSpace(text)
	normalized := Normalize(text)

	switch {
	case strings.HasPrefix(normalized, namePrefix):
		name := extractName(text)
		if name == "" {
			return "Nice to meet you! 😊", true
		}
		sess.SetUserName(name)
		return fmt.Sprintf("Nice to meet you, %s! 😊", name), true

	case strings.Contains(normalized, askName):
		if name, known := sess.UserName(); known {
			return fmt.Sprintf("Your name is %s 😊", name), true
		}
		return "I don't know your name yet.", true

	case strings.Contains(normalized, askLastMessage):
		if last, known := sess.LastMessage(); known {
			return `You said: "` + last + `"`, true
		}
		return "I don't remember yet.", true
	}

	if hasImage {
		return "", false
	}
	return r.table.Match(normalized)
}

// extractName keeps the user's casing. strings.ToLower maps rune for rune,
// so the prefix length in runes is the same in text and its normalized form.
func extractName(text string) string {
	runes := []rune(text)
	return strings.TrimSpace(string(runes[len([]rune(namePrefix)):]))
}
