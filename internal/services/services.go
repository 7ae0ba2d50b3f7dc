package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaHost stores uploaded files and returns their public URLs.
type MediaHost interface {
	HostImage(ctx context.Context, ownerID, filename string, data []byte) (string, error)
	HostDocument(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, url string) error
}

// contentTarget binds a content kind to its store and kind-specific errors.
type contentTarget struct {
	kind      models.ContentKind
	store     repository.ContentStore
	notFound  error
	authorSet repository.UserSet
}

func resolveTarget(kind models.ContentKind, posts, events repository.ContentStore) contentTarget {
	if kind == models.KindEvent {
		return contentTarget{kind: kind, store: events, notFound: ErrEventNotFound, authorSet: repository.SetEvents}
	}
	return contentTarget{kind: models.KindPost, store: posts, notFound: ErrPostNotFound, authorSet: repository.SetPosts}
}

// Clock returns the current time; replaced in tests.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// ParseID converts a hex path parameter into an ObjectID.
func ParseID(hex string, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid("Invalid " + what + " id")
	}
	return id, nil
}

// hashPassword returns a Validation error for input bcrypt refuses and an
// Internal error otherwise.
func hashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid("Password must be at most 72 bytes long")
	}
	if err != nil {
		return "", internal("hash password", err)
	}
	return string(b), nil
}

// notFoundAs maps repository.ErrNotFound onto the given domain error and
// anything else onto an internal error.
func notFoundAs(err error, notFound error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return internal(op, err)
}
