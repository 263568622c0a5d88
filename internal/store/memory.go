package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/h2non/filetype"

	"github.com/nubank/butu-chat/internal"
)

var (
	ErrNotImage      = errors.New("please select an image")
	ErrImageTooLarge = errors.New("image must be under 10 MB")
)

// Memory is what the assistant remembers about the user during one session.
type Memory struct {
	UserName        string
	LastUserMessage string
}

// Attachment is an image waiting to be sent with the next message.
type Attachment struct {
	Name string
	MIME string
	Data []byte
}

// Base64 returns the raw base64 payload, without a data-URL prefix.
func (a *Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// Session owns the memory slots and the pending attachment of one conversation.
// Nothing is persisted; a new Session starts empty.
type Session struct {
	mu         sync.Mutex
	memory     Memory
	attachment *Attachment
	maxImage   int64
}

func NewSession() *Session {
	return &Session{maxImage: internal.MaxImageBytes}
}

func (s *Session) Memory() Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

func (s *Session) SetUserName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.UserName = name
}

func (s *Session) UserName() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.UserName, s.memory.UserName != ""
}

// RememberMessage overwrites the last user message.
func (s *Session) RememberMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.LastUserMessage = text
}

func (s *Session) LastMessage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.LastUserMessage, s.memory.LastUserMessage != ""
}

// Reset forgets everything, including a pending attachment.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = Memory{}
	s.attachment = nil
}

// Attach validates data and makes it the pending attachment, replacing any
// previous one. On error the pending slot is left untouched.
func (s *Session) Attach(name string, data []byte) (*Attachment, error) {
	if int64(len(data)) > s.maxImage {
		return nil, ErrImageTooLarge
	}
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrNotImage
	}

	a := &Attachment{Name: name, MIME: kind.MIME.Value, Data: data}
	s.mu.Lock()
	s.attachment = a
	s.mu.Unlock()
	return a, nil
}

// AttachFile checks the size before reading, so oversized files are never loaded.
func (s *Session) AttachFile(path string) (*Attachment, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, ErrNotImage
	}
	if st.Size() > s.maxImage {
		return nil, ErrImageTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.Attach(filepath.Base(path), data)
}

func (s *Session) Attachment() (*Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment, s.attachment != nil
}

// TakeAttachment returns the pending attachment and clears the slot.
func (s *Session) TakeAttachment() *Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attachment
	s.attachment = nil
	return a
}

func (s *Session) ClearAttachment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = nil
}
