// Package notify pushes real-time notifications to connected users.
package notify

// Notifier delivers a payload to a recipient if they are connected.
// Implementations must not block and have no failure mode visible to the caller.
type Notifier interface {
	Notify(recipientID string, payload any)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, any) {}

// Envelope frames every message written to a socket.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
