// Package widget is the chat front end's dispatch pipeline: local replies
// first, then session memory, then the remote relay.
package widget

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nubank/butu-chat/internal"
	"github.com/nubank/butu-chat/internal/relay"
	"github.com/nubank/butu-chat/internal/render"
	"github.com/nubank/butu-chat/internal/responder"
	"github.com/nubank/butu-chat/internal/store"
)

var ErrEmptyMessage = errors.New("nothing to send")

// Relay sends a message to the remote model and always yields displayable text.
type Relay interface {
	Send(ctx context.Context, ind relay.Indicator, message, imageBase64 string) string
}

type Widget struct {
	session   *store.Session
	responder *responder.Responder
	relay     Relay
	renderer  *render.Renderer
	view      render.View
}

func New(session *store.Session, resp *responder.Responder, rl Relay, renderer *render.Renderer, view render.View) *Widget {
	return &Widget{
		session:   session,
		responder: resp,
		relay:     rl,
		renderer:  renderer,
		view:      view,
	}
}

func (w *Widget) Session() *store.Session { return w.session }

// Submit handles one compose action: the typed text plus any pending image.
// It returns when the reply has been fully rendered or ctx is cancelled.
func (w *Widget) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	image := w.session.TakeAttachment()
	if text == "" && image == nil {
		return ErrEmptyMessage
	}

	w.session.RememberMessage(text)

	if text != "" {
		w.view.AppendMessage(internal.SenderUser, text)
	}
	var imageBase64 string
	if image != nil {
		imageBase64 = image.Base64()
		w.view.AppendImage(internal.SenderUser, image.Name, image.MIME, imageBase64)
	}

	if reply, ok := w.responder.Respond(w.session, text, image != nil); ok {
		log.Debug().Msg("answered locally")
		return w.renderer.Present(ctx, reply)
	}

	log.Debug().Bool("image", image != nil).Msg("relaying to remote model")
	reply := w.relay.Send(ctx, w.view, text, imageBase64)
	return w.renderer.Reveal(ctx, reply)
}

// Attach validates the file at path and makes it the pending image. Rejected
// files are reported through the view and leave the pending slot unchanged.
func (w *Widget) Attach(path string) error {
	a, err := w.session.AttachFile(path)
	if err != nil {
		w.view.Alert(alertText(err))
		return err
	}
	log.Debug().Str("name", a.Name).Str("mime", a.MIME).Int("bytes", len(a.Data)).Msg("image attached")
	return nil
}

func (w *Widget) ClearAttachment() {
	w.session.ClearAttachment()
}

func alertText(err error) string {
	switch {
	case errors.Is(err, store.ErrNotImage):
		return "Please select an image."
	case errors.Is(err, store.ErrImageTooLarge):
		return "Image must be under 10 MB."
	}
	return "Could not read the image: " + err.Error()
}
