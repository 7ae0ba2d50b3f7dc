package models

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is pushed to a content author when someone else interacts with their content.
type Notification struct {
	Type        NotificationType `json:"type"`
	UserID      string           `json:"userId"`
	UserDetails *UserSummary     `json:"userDetails,omitempty"`
	PostID      string           `json:"postId,omitempty"`
	EventID     string           `json:"eventId,omitempty"`
	CommentID   string           `json:"commentId,omitempty"`
	Message     string           `json:"message"`
}
