package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/models"
)

// DeriveStatus places now relative to the [start, end] window.
func DeriveStatus(now, start, end time.Time) models.EventStatus {
	switch {
	case now.After(end):
		return models.StatusCompleted
	case !now.Before(start):
		return models.StatusOngoing
	default:
		return models.StatusUpcoming
	}
}

// ResolveStatus derives the status when both bounds are known and keeps the
// stored one otherwise.
func ResolveStatus(now time.Time, start, end *time.Time, stored models.EventStatus) models.EventStatus {
	if start == nil || end == nil {
		if stored == "" {
			return models.StatusUpcoming
		}
		return stored
	}
	return DeriveStatus(now, *start, *end)
}

// StatusWriter persists a corrected event status.
type StatusWriter interface {
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.EventStatus) error
}

// StatusReconciler corrects stale event statuses after a read and persists the changes.
type StatusReconciler struct {
	store  StatusWriter
	now    func() time.Time
	logger *zap.Logger
}

func NewStatusReconciler(store StatusWriter, now func() time.Time, logger *zap.Logger) *StatusReconciler {
	return &StatusReconciler{store: store, now: now, logger: logger}
}

// Reconcile updates events in place and returns how many statuses were rewritten.
// A failed write leaves that event's stored status stale and does not stop the rest.
func (r *StatusReconciler) Reconcile(ctx context.Context, events []models.Event) (int, error) {
	now := r.now()
	changed := 0
	var errs []error
	for i := range events {
		e := &events[i]
		next := ResolveStatus(now, e.StartDate, e.EndDate, e.Status)
		if next == e.Status {
			continue
		}
		if err := r.store.SetStatus(ctx, e.ID, next); err != nil {
			r.logger.Warn("event status write failed", zap.String("event_id", e.ID.Hex()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		r.logger.Debug("event status corrected",
			zap.String("event_id", e.ID.Hex()),
			zap.String("from", string(e.Status)),
			zap.String("to", string(next)),
		)
		e.Status = next
		changed++
	}
	if len(errs) > 0 {
		return changed, internal("persist event status", errors.Join(errs...))
	}
	return changed, nil
}
