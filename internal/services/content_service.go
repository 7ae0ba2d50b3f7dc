package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// EventInput is the form of an event creation request. Dates accept RFC3339
// or a plain 2006-01-02 date.
type EventInput struct {
	Caption     string
	Description string
	StartDate   string
	EndDate     string
	Image       *Upload
}

// ContentService creates, lists and deletes posts and events.
type ContentService struct {
	users      repository.UserRepository
	posts      repository.PostRepository
	events     repository.EventRepository
	comments   repository.CommentRepository
	media      MediaHost
	activity   activity.Recorder
	reconciler *StatusReconciler
	populate   populator
	now        Clock
	logger     *zap.Logger

	// ReconcileOnRead persists corrected event statuses during ListEvents.
	ReconcileOnRead bool
}

func NewContentService(
	users repository.UserRepository,
	posts repository.PostRepository,
	events repository.EventRepository,
	comments repository.CommentRepository,
	media MediaHost,
	rec activity.Recorder,
	logger *zap.Logger,
) *ContentService {
	s := &ContentService{
		users:           users,
		posts:           posts,
		events:          events,
		comments:        comments,
		media:           media,
		activity:        rec,
		populate:        populator{users: users, comments: comments},
		now:             systemClock,
		logger:          logger,
		ReconcileOnRead: true,
	}
	s.reconciler = NewStatusReconciler(events, func() time.Time { return s.now() }, logger)
	return s
}

func (s *ContentService) target(kind models.ContentKind) contentTarget {
	return resolveTarget(kind, s.posts, s.events)
}

func (s *ContentService) author(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "find author")
	}
	return u, nil
}

func (s *ContentService) hostImage(ctx context.Context, ownerID primitive.ObjectID, img *Upload) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", nil
	}
	url, err := s.media.HostImage(ctx, ownerID.Hex(), img.Filename, img.Data)
	if err != nil {
		s.logger.Warn("image hosting failed", zap.String("owner_id", ownerID.Hex()), zap.Error(err))
		return "", delivery("Failed to process image", err)
	}
	return url, nil
}

func hasImage(img *Upload) bool { return img != nil && len(img.Data) > 0 }

func (s *ContentService) CreatePost(ctx context.Context, authorID primitive.ObjectID, caption string, image *Upload) (*models.PostView, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" && !hasImage(image) {
		return nil, invalid("Please provide at least a caption or image")
	}
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	url, err := s.hostImage(ctx, authorID, image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Content: models.Content{
		Caption:   caption,
		Image:     url,
		Author:    authorID,
		CreatedAt: s.now(),
	}}
	post.EnsureSets()
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, internal("create post", err)
	}
	if err := s.users.AddToSet(ctx, authorID, repository.SetPosts, post.ID); err != nil {
		return nil, internal("link post to author", err)
	}

	s.recordCreated(ctx, models.KindPost, authorID, post.ID)
	return &models.PostView{Post: *post, Author: author.Summary(), Comments: []models.CommentView{}}, nil
}

func parseEventDate(v, field string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalid("Invalid " + field)
}

func (s *ContentService) CreateEvent(ctx context.Context, authorID primitive.ObjectID, in EventInput) (*models.EventView, error) {
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.Role != models.RoleFaculty {
		return nil, ErrFacultyOnly
	}

	caption := strings.TrimSpace(in.Caption)
	if caption == "" && !hasImage(in.Image) {
		return nil, invalid("Please provide at least a caption or image")
	}
	start, err := parseEventDate(in.StartDate, "start date")
	if err != nil {
		return nil, err
	}
	end, err := parseEventDate(in.EndDate, "end date")
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, invalid("End date must be after start date")
	}

	url, err := s.hostImage(ctx, authorID, in.Image)
	if err != nil {
		return nil, err
	}

	now := s.now()
	event := &models.Event{
		Content: models.Content{
			Caption:   caption,
			Image:     url,
			Author:    authorID,
			CreatedAt: now,
		},
		StartDate:   start,
		EndDate:     end,
		Description: strings.TrimSpace(in.Description),
		Status:      ResolveStatus(now, start, end, models.StatusUpcoming),
	}
	event.EnsureSets()
	if err := s.events.Create(ctx, event); err != nil {
		return nil, internal("create event", err)
	}
	if err := s.users.AddToSet(ctx, authorID, repository.SetEvents, event.ID); err != nil {
		return nil, internal("link event to author", err)
	}

	s.recordCreated(ctx, models.KindEvent, authorID, event.ID)
	return &models.EventView{Event: *event, Author: author.Summary(), Comments: []models.CommentView{}}, nil
}

func (s *ContentService) recordCreated(ctx context.Context, kind models.ContentKind, authorID, id primitive.ObjectID) {
	s.activity.Record(ctx, activity.Event{
		Type:      activity.ContentCreated,
		ActorID:   authorID.Hex(),
		SubjectID: id.Hex(),
		Attrs:     map[string]string{"kind": string(kind)},
		At:        s.now(),
	})
}

// ListPosts returns every post, newest first, with authors and comments expanded.
func (s *ContentService) ListPosts(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return s.populate.posts(ctx, posts)
}

func (s *ContentService) ListPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.PostView, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, internal("list posts by author", err)
	}
	return s.populate.posts(ctx, posts)
}

// ListEvents returns every event, newest first. Stale statuses are corrected
// in the response and, when ReconcileOnRead is set, persisted.
func (s *ContentService) ListEvents(ctx context.Context) ([]models.EventView, error) {
	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, internal("list events", err)
	}

	if s.ReconcileOnRead {
		if _, err := s.reconciler.Reconcile(ctx, events); err != nil {
			s.logger.Warn("event status reconcile failed", zap.Error(err))
		}
	}
	now := s.now()
	for i := range events {
		events[i].Status = ResolveStatus(now, events[i].StartDate, events[i].EndDate, events[i].Status)
	}
	return s.populate.events(ctx, events)
}

// Delete removes a post or event together with its comments. Only the author
// or an admin may delete.
func (s *ContentService) Delete(ctx context.Context, kind models.ContentKind, actorID, id primitive.ObjectID) error {
	t := s.target(kind)
	content, err := t.store.FindContent(ctx, id)
	if err != nil {
		return notFoundAs(err, t.notFound, "find content")
	}
	if content.Author != actorID {
		actor, err := s.users.FindByID(ctx, actorID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return internal("find actor", err)
		}
		if actor == nil || actor.Role != models.RoleAdmin {
			return ErrNotContentOwner
		}
	}

	removed, err := s.comments.DeleteByParent(ctx, id)
	if err != nil {
		return internal("delete comments", err)
	}
	if err := t.store.Delete(ctx, id); err != nil {
		return notFoundAs(err, t.notFound, "delete content")
	}
	if err := s.users.PullFromSet(ctx, content.Author, t.authorSet, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return internal("unlink content from author", err)
	}

	s.activity.Record(ctx, activity.Event{
		Type:      activity.ContentDeleted,
		ActorID:   actorID.Hex(),
		SubjectID: id.Hex(),
		Attrs:     map[string]string{"kind": string(kind)},
		At:        s.now(),
	})
	s.logger.Info("content deleted",
		zap.String("kind", string(kind)),
		zap.String("content_id", id.Hex()),
		zap.Int64("comments_removed", removed),
	)
	return nil
}
