package services

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/metrics"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// GraphService maintains the follow graph. Each edge is stored on both
// endpoints: actor.following and target.followers.
type GraphService struct {
	users    repository.UserRepository
	activity activity.Recorder
	now      Clock
	logger   *zap.Logger
}

func NewGraphService(users repository.UserRepository, rec activity.Recorder, logger *zap.Logger) *GraphService {
	return &GraphService{users: users, activity: rec, now: systemClock, logger: logger}
}

type edgeWrite func(ctx context.Context, id primitive.ObjectID, set repository.UserSet, value primitive.ObjectID) error

// FollowOrUnfollow toggles the edge actor -> target and reports whether the
// actor follows the target afterwards.
func (s *GraphService) FollowOrUnfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return false, notFoundAs(err, ErrUserNotFound, "find actor")
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return false, notFoundAs(err, ErrUserNotFound, "find target")
	}

	unfollow := actor.IsFollowing(targetID)
	apply, revert := s.users.AddToSet, s.users.PullFromSet
	if unfollow {
		apply, revert = s.users.PullFromSet, s.users.AddToSet
	}

	if err := apply(ctx, actorID, repository.SetFollowing, targetID); err != nil {
		return false, internal("update actor following", err)
	}
	if err := apply(ctx, targetID, repository.SetFollowers, actorID); err != nil {
		s.compensate(ctx, revert, actorID, targetID, err)
		return false, internal("update target followers", err)
	}

	eventType := activity.UserFollowed
	if unfollow {
		eventType = activity.UserUnfollowed
	}
	s.activity.Record(ctx, activity.Event{Type: eventType, ActorID: actorID.Hex(), SubjectID: targetID.Hex(), At: s.now()})
	return !unfollow, nil
}

// compensate undoes the actor-side write after the target-side write failed.
// If that fails too the edge stays one-sided and is reported.
func (s *GraphService) compensate(ctx context.Context, revert edgeWrite, actorID, targetID primitive.ObjectID, cause error) {
	err := revert(ctx, actorID, repository.SetFollowing, targetID)
	if err == nil {
		s.logger.Warn("follow edge reverted after partial write",
			zap.String("actor_id", actorID.Hex()),
			zap.String("target_id", targetID.Hex()),
			zap.Error(cause),
		)
		return
	}

	metrics.GraphInconsistencies.Inc()
	s.logger.Error("follow edge left inconsistent",
		zap.String("actor_id", actorID.Hex()),
		zap.String("target_id", targetID.Hex()),
		zap.NamedError("write_error", cause),
		zap.NamedError("revert_error", err),
	)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "graph")
		scope.SetContext("follow_edge", sentry.Context{
			"actor_id":  actorID.Hex(),
			"target_id": targetID.Hex(),
		})
		sentry.CaptureException(fmt.Errorf("follow edge inconsistent: %w (revert: %w)", cause, err))
	})
}
