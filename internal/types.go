package internal

// Sender identifies who authored a message in the conversation view.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatRequest is the body of POST /chat. At least one field is set when the
// widget sends it; the server still answers an empty request with a greeting.
type ChatRequest struct {
	Message     string `json:"message,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// ChatReply is the body returned by POST /chat, for successes and failures alike.
type ChatReply struct {
	Reply string `json:"reply"`
}

// --- fixed reply strings shared by server and client ---
const (
	ReplyUpstreamError  = "AI service error."
	ReplyServerError    = "Server error."
	ReplyCouldNotAnswer = "I couldn't analyze that."
	ReplyInvalidRequest = "Invalid request."
	ReplyTooLarge       = "Request too large."

	ReplyNoResponse  = "No response."
	ReplyRelayFailed = "❌ Server error. Please try again."
)

// MaxImageBytes caps a single image attachment (10 MiB).
const MaxImageBytes = 10 * 1024 * 1024
