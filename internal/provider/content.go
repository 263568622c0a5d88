package provider

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

const (
	englishOnly = "Reply ONLY in English."

	DefaultTextPrompt  = "Say hello."
	DefaultImagePrompt = "Describe this image in detail."

	fallbackImageMIME = "image/png"
)

// UserContent is the user turn sent upstream.
type UserContent struct {
	// Message is the user's text, or the default prompt when none was given.
	Message string
	// Text is Message behind the English-only instruction.
	Text string
	// ImageURL is a data URL; empty for text-only turns.
	ImageURL string
}

// BuildUserContent assembles the user turn. imageBase64 may carry a data-URL
// prefix; it is stripped and the MIME type is sniffed from the payload.
func BuildUserContent(message, imageBase64 string) UserContent {
	message = strings.TrimSpace(message)
	imageBase64 = strings.TrimSpace(imageBase64)

	c := UserContent{Message: message}
	if imageBase64 != "" {
		if c.Message == "" {
			c.Message = DefaultImagePrompt
		}
		c.ImageURL = ImageDataURL(imageBase64)
	} else if c.Message == "" {
		c.Message = DefaultTextPrompt
	}
	c.Text = englishOnly + "\n\n" + c.Message
	return c
}

// SystemPrompt is the fixed system instruction for the given persona.
func SystemPrompt(persona string) string {
	return fmt.Sprintf("You are %s, a helpful AI assistant. You MUST reply only in English. Never use any other language.", persona)
}

// ImageDataURL wraps raw base64 image data in a data URL.
func ImageDataURL(imageBase64 string) string {
	payload := StripDataURL(imageBase64)
	return "data:" + sniffImageMIME(payload) + ";base64," + payload
}

// StripDataURL drops a leading "data:<mime>;base64," if present.
func StripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ";base64,"); i >= 0 {
		return s[i+len(";base64,"):]
	}
	return s
}

// sniffImageMIME decodes just enough of the payload for filetype's matchers.
func sniffImageMIME(payload string) string {
	const headChars = 360 // 270 decoded bytes, a multiple of 4 characters

	head := payload
	if len(head) > headChars {
		head = head[:headChars]
	}
	buf, err := base64.StdEncoding.DecodeString(head)
	if err != nil {
		return fallbackImageMIME
	}
	kind, err := filetype.Image(buf)
	if err != nil || kind == filetype.Unknown {
		return fallbackImageMIME
	}
	return kind.MIME.Value
}
