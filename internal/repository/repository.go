package repository

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fathima-sithara/campus-service/internal/models"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError names the unique field that rejected a write.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string { return "duplicate key on " + e.Field }

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// UserSet names one of the ID arrays kept on a user document.
type UserSet string

const (
	SetFollowers UserSet = "followers"
	SetFollowing UserSet = "following"
	SetPosts     UserSet = "posts"
	SetBookmarks UserSet = "bookmarks"
	SetEvents    UserSet = "events"
)

// ProfileUpdate carries the optional profile fields; nil leaves a field untouched.
type ProfileUpdate struct {
	Bio            *string
	Gender         *string
	ProfilePicture *string
}

type UserRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRollNumber(ctx context.Context, roll string) (*models.User, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ListExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error)
	SetPassword(ctx context.Context, email, hash string) error
	SetResume(ctx context.Context, id primitive.ObjectID, url, name string) error
	AddToSet(ctx context.Context, id primitive.ObjectID, set UserSet, value primitive.ObjectID) error
	PullFromSet(ctx context.Context, id primitive.ObjectID, set UserSet, value primitive.ObjectID) error
}

type OTPRepository interface {
	EnsureIndexes(ctx context.Context) error
	Upsert(ctx context.Context, otp *models.OTP) error
	FindByEmail(ctx context.Context, email string) (*models.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type PasswordResetRepository interface {
	EnsureIndexes(ctx context.Context) error
	Upsert(ctx context.Context, email, code string) error
	FindByEmail(ctx context.Context, email string) (*models.PasswordReset, error)
	MarkVerified(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
}

// ContentStore is the like/comment surface shared by posts and events.
type ContentStore interface {
	FindContent(ctx context.Context, id primitive.ObjectID) (*models.Content, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
	AppendComment(ctx context.Context, id, commentID primitive.ObjectID) error
	RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PostRepository interface {
	ContentStore
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error)
}

type EventRepository interface {
	ContentStore
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.EventStatus) error
}

type CommentRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	ListByParent(ctx context.Context, parent primitive.ObjectID) ([]models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByParent(ctx context.Context, parent primitive.ObjectID) (int64, error)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Field: duplicateField(err)}
	}
	return err
}

var uniqueFields = []string{"rollnumber", "username", "email"}

func duplicateField(err error) string {
	msg := err.Error()
	for _, f := range uniqueFields {
		if strings.Contains(msg, f+"_1") || strings.Contains(msg, "{ "+f+":") {
			return f
		}
	}
	return "unknown"
}
