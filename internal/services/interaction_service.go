package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// InteractionService handles likes and comments on posts and events and
// notifies the content author.
type InteractionService struct {
	users    repository.UserRepository
	posts    repository.ContentStore
	events   repository.ContentStore
	comments repository.CommentRepository
	notifier notify.Notifier
	now      Clock
	logger   *zap.Logger
}

func NewInteractionService(
	users repository.UserRepository,
	posts repository.ContentStore,
	events repository.ContentStore,
	comments repository.CommentRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
) *InteractionService {
	return &InteractionService{
		users:    users,
		posts:    posts,
		events:   events,
		comments: comments,
		notifier: notifier,
		now:      systemClock,
		logger:   logger,
	}
}

func (s *InteractionService) find(ctx context.Context, kind models.ContentKind, id primitive.ObjectID) (contentTarget, *models.Content, error) {
	t := resolveTarget(kind, s.posts, s.events)
	c, err := t.store.FindContent(ctx, id)
	if err != nil {
		return t, nil, notFoundAs(err, t.notFound, "find content")
	}
	return t, c, nil
}

func (s *InteractionService) Like(ctx context.Context, kind models.ContentKind, actorID, contentID primitive.ObjectID) error {
	t, content, err := s.find(ctx, kind, contentID)
	if err != nil {
		return err
	}
	if content.LikedBy(actorID) {
		return ErrAlreadyLiked
	}
	if err := t.store.AddLike(ctx, contentID, actorID); err != nil {
		return notFoundAs(err, t.notFound, "add like")
	}

	if content.Author != actorID {
		if actor, err := s.users.FindByID(ctx, actorID); err == nil {
			s.notify(content.Author, s.notification(t.kind, models.NotificationLike, actor, contentID, primitive.NilObjectID))
		} else {
			s.logger.Warn("like notification skipped", zap.String("actor_id", actorID.Hex()), zap.Error(err))
		}
	}
	return nil
}

// Unlike removes the actor's like; removing an absent like succeeds.
func (s *InteractionService) Unlike(ctx context.Context, kind models.ContentKind, actorID, contentID primitive.ObjectID) error {
	t, _, err := s.find(ctx, kind, contentID)
	if err != nil {
		return err
	}
	if err := t.store.RemoveLike(ctx, contentID, actorID); err != nil {
		return notFoundAs(err, t.notFound, "remove like")
	}
	return nil
}

func (s *InteractionService) Comment(ctx context.Context, kind models.ContentKind, actorID, contentID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Comment text is required")
	}
	t, content, err := s.find(ctx, kind, contentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "find commenter")
	}

	comment := &models.Comment{
		Text:      text,
		Author:    actorID,
		Parent:    contentID,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, internal("create comment", err)
	}
	if err := t.store.AppendComment(ctx, contentID, comment.ID); err != nil {
		return nil, notFoundAs(err, t.notFound, "attach comment")
	}

	if content.Author != actorID {
		s.notify(content.Author, s.notification(t.kind, models.NotificationComment, actor, contentID, comment.ID))
	}
	return &models.CommentView{Comment: *comment, Author: actor.Summary()}, nil
}

// ListComments returns the comments of a content item, newest first.
func (s *InteractionService) ListComments(ctx context.Context, kind models.ContentKind, contentID primitive.ObjectID) ([]models.CommentView, error) {
	if _, _, err := s.find(ctx, kind, contentID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByParent(ctx, contentID)
	if err != nil {
		return nil, internal("list comments", err)
	}

	authors := map[primitive.ObjectID]*models.UserSummary{}
	var ids []primitive.ObjectID
	for _, c := range comments {
		if _, ok := authors[c.Author]; !ok {
			authors[c.Author] = nil
			ids = append(ids, c.Author)
		}
	}
	if err := (populator{users: s.users}).loadAuthors(ctx, ids, authors); err != nil {
		return nil, err
	}

	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.CommentView{Comment: c, Author: authors[c.Author]})
	}
	sortComments(out)
	return out, nil
}

// DeleteComment removes a comment. The comment author and the content author may delete it.
func (s *InteractionService) DeleteComment(ctx context.Context, kind models.ContentKind, actorID, contentID, commentID primitive.ObjectID) error {
	t, content, err := s.find(ctx, kind, contentID)
	if err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return notFoundAs(err, ErrCommentNotFound, "find comment")
	}
	if comment.Parent != contentID {
		return ErrCommentNotFound
	}
	if comment.Author != actorID && content.Author != actorID {
		return ErrNotCommentOwner
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return notFoundAs(err, ErrCommentNotFound, "delete comment")
	}
	if err := t.store.RemoveComment(ctx, contentID, commentID); err != nil {
		return notFoundAs(err, t.notFound, "detach comment")
	}
	return nil
}

func (s *InteractionService) notification(kind models.ContentKind, typ models.NotificationType, actor *models.User, contentID, commentID primitive.ObjectID) models.Notification {
	n := models.Notification{
		Type:   typ,
		UserID: actor.ID.Hex(),
		UserDetails: &models.UserSummary{
			ID:             actor.ID,
			Username:       actor.Username,
			FullName:       actor.FullName,
			ProfilePicture: actor.ProfilePicture,
		},
	}
	if kind == models.KindEvent {
		n.EventID = contentID.Hex()
	} else {
		n.PostID = contentID.Hex()
	}
	if !commentID.IsZero() {
		n.CommentID = commentID.Hex()
	}

	switch {
	case typ == models.NotificationLike && kind == models.KindEvent:
		n.Message = "Your event was liked"
	case typ == models.NotificationLike:
		n.Message = "Your post was liked"
	case kind == models.KindEvent:
		n.Message = "commented on your event"
	default:
		n.Message = "commented on your post"
	}
	return n
}

func (s *InteractionService) notify(recipient primitive.ObjectID, n models.Notification) {
	s.notifier.Notify(recipient.Hex(), n)
}
