package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/repository/memstore"
)

type contentFixture struct {
	svc      *ContentService
	users    *memstore.Users
	posts    *memstore.Posts
	events   *memstore.Events
	comments *memstore.Comments
	media    *fakeMedia
	rec      *recordedEvents
}

var contentEpoch = time.Date(2025, time.January, 5, 8, 0, 0, 0, time.UTC)

func newContentFixture() *contentFixture {
	f := &contentFixture{
		users:    memstore.NewUsers(),
		posts:    memstore.NewPosts(),
		events:   memstore.NewEvents(),
		comments: memstore.NewComments(),
		media:    &fakeMedia{},
		rec:      &recordedEvents{},
	}
	f.svc = NewContentService(f.users, f.posts, f.events, f.comments, f.media, f.rec, zap.NewNop())
	f.svc.now = tickingClock(contentEpoch)
	return f
}

func (f *contentFixture) interactions() *InteractionService {
	s := NewInteractionService(f.users, f.posts, f.events, f.comments, notify.Nop{}, zap.NewNop())
	s.now = f.svc.now
	return s
}

func TestContent_CreatePost(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	author := seedUser(t, f.users, "asha", models.RoleStudent)

	_, err := f.svc.CreatePost(ctx, author.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	view, err := f.svc.CreatePost(ctx, author.ID, "hello campus", &Upload{Filename: "a.png", Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "hello campus", view.Caption)
	assert.Equal(t, "https://cdn.test/images/"+author.ID.Hex()+"/a.png", view.Image)
	assert.Equal(t, "asha", view.Author.Username)
	assert.Empty(t, view.Comments)

	assert.Equal(t, []primitive.ObjectID{view.ID}, mustFindUser(t, f.users, author.ID).Posts)
	assert.Equal(t, []string{activity.ContentCreated}, f.rec.types())
}

func TestContent_CreatePostMediaFailureWritesNothing(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	author := seedUser(t, f.users, "asha", models.RoleStudent)
	f.media.hostErr = errBoom

	_, err := f.svc.CreatePost(ctx, author.ID, "with picture", &Upload{Filename: "a.png", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrDelivery)

	all, err := f.posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, mustFindUser(t, f.users, author.ID).Posts)
}

func TestContent_CreateEvent(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	student := seedUser(t, f.users, "asha", models.RoleStudent)
	faculty := seedUser(t, f.users, "prof", models.RoleFaculty)

	_, err := f.svc.CreateEvent(ctx, student.ID, EventInput{Caption: "Hackathon"})
	assert.ErrorIs(t, err, ErrFacultyOnly)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateEvent(ctx, faculty.ID, EventInput{Caption: "Fest", StartDate: "soon"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateEvent(ctx, faculty.ID, EventInput{Caption: "Fest", StartDate: "2025-01-10", EndDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrValidation)

	tests := []struct {
		name string
		in   EventInput
		want models.EventStatus
	}{
		{"running now", EventInput{Caption: "Fest", StartDate: "2025-01-01", EndDate: "2025-01-10"}, models.StatusOngoing},
		{"already over", EventInput{Caption: "Expo", StartDate: "2024-12-01", EndDate: "2024-12-02T18:00:00Z"}, models.StatusCompleted},
		{"in future", EventInput{Caption: "Meetup", StartDate: "2025-03-01", EndDate: "2025-03-02"}, models.StatusUpcoming},
		{"no dates", EventInput{Caption: "Talk"}, models.StatusUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.svc.CreateEvent(ctx, faculty.ID, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Status)
			assert.Equal(t, "prof", view.Author.Username)
		})
	}
	assert.Len(t, mustFindUser(t, f.users, faculty.ID).Events, len(tests))
}

func TestContent_ListPostsPopulates(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	asha := seedUser(t, f.users, "asha", models.RoleStudent)
	bala := seedUser(t, f.users, "bala", models.RoleStudent)
	ix := f.interactions()

	first, err := f.svc.CreatePost(ctx, asha.ID, "first", nil)
	require.NoError(t, err)
	second, err := f.svc.CreatePost(ctx, bala.ID, "second", nil)
	require.NoError(t, err)

	_, err = ix.Comment(ctx, models.KindPost, bala.ID, first.ID, "older")
	require.NoError(t, err)
	_, err = ix.Comment(ctx, models.KindPost, asha.ID, first.ID, "newer")
	require.NoError(t, err)

	views, err := f.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID, "newest first")
	assert.Equal(t, "bala", views[0].Author.Username)

	require.Len(t, views[1].Comments, 2)
	assert.Equal(t, "newer", views[1].Comments[0].Text)
	assert.Equal(t, "asha", views[1].Comments[0].Author.Username)
	assert.Equal(t, "bala", views[1].Comments[1].Author.Username)

	mine, err := f.svc.ListPostsByAuthor(ctx, bala.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "second", mine[0].Caption)
}

func TestContent_ListEventsReconciles(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	prof := seedUser(t, f.users, "prof", models.RoleFaculty)

	view, err := f.svc.CreateEvent(ctx, prof.ID, EventInput{Caption: "Fest", StartDate: "2025-01-06", EndDate: "2025-01-08"})
	require.NoError(t, err)
	require.Equal(t, models.StatusUpcoming, view.Status)

	f.svc.now = fixedClock(time.Date(2025, time.January, 7, 12, 0, 0, 0, time.UTC))
	f.svc.ReconcileOnRead = false
	list, err := f.svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, list[0].Status, "response is corrected")
	assert.Equal(t, 0, f.events.StatusWrites)

	f.svc.ReconcileOnRead = true
	_, err = f.svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.events.StatusWrites)
	stored, err := f.events.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, stored.Status)

	_, err = f.svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.events.StatusWrites, "already current")
}

func TestContent_DeleteCascades(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	asha := seedUser(t, f.users, "asha", models.RoleStudent)
	bala := seedUser(t, f.users, "bala", models.RoleStudent)
	admin := seedUser(t, f.users, "root", models.RoleAdmin)
	ix := f.interactions()

	post, err := f.svc.CreatePost(ctx, asha.ID, "to delete", nil)
	require.NoError(t, err)
	_, err = ix.Comment(ctx, models.KindPost, bala.ID, post.ID, "nice")
	require.NoError(t, err)
	keep, err := f.svc.CreatePost(ctx, asha.ID, "keep", nil)
	require.NoError(t, err)
	_, err = ix.Comment(ctx, models.KindPost, bala.ID, keep.ID, "stays")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, models.KindPost, bala.ID, post.ID), ErrNotContentOwner)
	assert.ErrorIs(t, f.svc.Delete(ctx, models.KindPost, asha.ID, primitive.NewObjectID()), ErrPostNotFound)

	require.NoError(t, f.svc.Delete(ctx, models.KindPost, asha.ID, post.ID))
	assert.Equal(t, 1, f.comments.Count())
	assert.Equal(t, []primitive.ObjectID{keep.ID}, mustFindUser(t, f.users, asha.ID).Posts)
	_, err = f.posts.FindByID(ctx, post.ID)
	assert.Error(t, err)

	require.NoError(t, f.svc.Delete(ctx, models.KindPost, admin.ID, keep.ID), "admin may delete")
	assert.Equal(t, 0, f.comments.Count())
	assert.Empty(t, mustFindUser(t, f.users, asha.ID).Posts)
}

func TestContent_DeleteEvent(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	prof := seedUser(t, f.users, "prof", models.RoleFaculty)

	ev, err := f.svc.CreateEvent(ctx, prof.ID, EventInput{Caption: "Seminar"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, models.KindEvent, prof.ID, primitive.NewObjectID()), ErrEventNotFound)
	require.NoError(t, f.svc.Delete(ctx, models.KindEvent, prof.ID, ev.ID))
	assert.Empty(t, mustFindUser(t, f.users, prof.ID).Events)
}
