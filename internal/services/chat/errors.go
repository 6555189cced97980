package chat

// ChatError is a custom error type for chat-related errors
type ChatError string

// Error implements the error interface
func (e ChatError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrBodyTooShort       ChatError = "message body is too short"
	ErrBodyTooLong        ChatError = "message body is too long"
	ErrProfileRequired    ChatError = "a name and icon is required to send messages"
	ErrNotMessageAuthor   ChatError = "only the author may modify a message"
	ErrNilConfig          ChatError = "config cannot be nil"
	ErrNilMessageRepo     ChatError = "message repository cannot be nil"
	ErrNilUserRepo        ChatError = "user repository cannot be nil"
	ErrNilClock           ChatError = "clock cannot be nil"
)
