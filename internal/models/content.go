package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentKind distinguishes the two content collections.
type ContentKind string

const (
	KindPost  ContentKind = "post"
	KindEvent ContentKind = "event"
)

type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
)

// Content holds the fields shared by posts and events.
type Content struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Caption   string               `bson:"caption" json:"caption"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

func (c *Content) LikedBy(id primitive.ObjectID) bool {
	return containsID(c.Likes, id)
}

func (c *Content) EnsureSets() {
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	if c.Comments == nil {
		c.Comments = []primitive.ObjectID{}
	}
}

type Post struct {
	Content `bson:",inline"`
}

type Event struct {
	Content     `bson:",inline"`
	StartDate   *time.Time  `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time  `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Description string      `bson:"description" json:"description"`
	Status      EventStatus `bson:"eventStatus" json:"eventStatus"`
}

type Comment struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text   string             `bson:"text" json:"text"`
	Author primitive.ObjectID `bson:"author" json:"author"`
	// Parent is the post or event the comment belongs to.
	Parent    primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	Comment
	Author *UserSummary `json:"author"`
}

// PostView is a post with author and comments expanded.
type PostView struct {
	Post
	Author   *UserSummary  `json:"author"`
	Comments []CommentView `json:"comments"`
}

// EventView is an event with author and comments expanded.
type EventView struct {
	Event
	Author   *UserSummary  `json:"author"`
	Comments []CommentView `json:"comments"`
}
