// Package memstore is an in-memory implementation of the repository interfaces,
// used by service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func pullID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	m := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// Users implements repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]*models.User{}}
}

var _ repository.UserRepository = (*Users)(nil)

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = cloneIDs(u.Followers)
	c.Following = cloneIDs(u.Following)
	c.Posts = cloneIDs(u.Posts)
	c.Bookmarks = cloneIDs(u.Bookmarks)
	c.Events = cloneIDs(u.Events)
	return &c
}

func (s *Users) EnsureIndexes(context.Context) error { return nil }

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		switch {
		case existing.Email == u.Email:
			return &repository.DuplicateKeyError{Field: "email"}
		case existing.RollNumber == u.RollNumber:
			return &repository.DuplicateKeyError{Field: "rollnumber"}
		case existing.Username == u.Username:
			return &repository.DuplicateKeyError{Field: "username"}
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.EnsureSets()
	s.byID[u.ID] = cloneUser(u)
	s.order = append(s.order, u.ID)
	return nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) findBy(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.Email == email })
}

func (s *Users) FindByRollNumber(_ context.Context, roll string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.RollNumber == roll })
}

func (s *Users) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(ids)
	var out []models.User
	for _, id := range s.order {
		if want[id] {
			out = append(out, *cloneUser(s.byID[id]))
		}
	}
	return out, nil
}

func (s *Users) ListExcept(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, uid := range s.order {
		if uid != id {
			out = append(out, *cloneUser(s.byID[uid]))
		}
	}
	return out, nil
}

func (s *Users) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd repository.ProfileUpdate) (*models.User, error) {
	err := s.mutate(id, func(u *models.User) {
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.Gender != nil {
			u.Gender = *upd.Gender
		}
		if upd.ProfilePicture != nil {
			u.ProfilePicture = *upd.ProfilePicture
		}
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *Users) SetPassword(ctx context.Context, email, hash string) error {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.mutate(u.ID, func(u *models.User) { u.Password = hash })
}

func (s *Users) SetResume(_ context.Context, id primitive.ObjectID, url, name string) error {
	return s.mutate(id, func(u *models.User) { u.ResumeURL, u.ResumeName = url, name })
}

func (s *Users) field(u *models.User, set repository.UserSet) *[]primitive.ObjectID {
	switch set {
	case repository.SetFollowers:
		return &u.Followers
	case repository.SetFollowing:
		return &u.Following
	case repository.SetPosts:
		return &u.Posts
	case repository.SetBookmarks:
		return &u.Bookmarks
	default:
		return &u.Events
	}
}

func (s *Users) AddToSet(_ context.Context, id primitive.ObjectID, set repository.UserSet, value primitive.ObjectID) error {
	return s.mutate(id, func(u *models.User) {
		f := s.field(u, set)
		*f = addID(*f, value)
	})
}

func (s *Users) PullFromSet(_ context.Context, id primitive.ObjectID, set repository.UserSet, value primitive.ObjectID) error {
	return s.mutate(id, func(u *models.User) {
		f := s.field(u, set)
		*f = pullID(*f, value)
	})
}

// OTPs implements repository.OTPRepository. Expiry is simulated by deleting records.
type OTPs struct {
	mu      sync.Mutex
	byEmail map[string]models.OTP
}

func NewOTPs() *OTPs { return &OTPs{byEmail: map[string]models.OTP{}} }

var _ repository.OTPRepository = (*OTPs)(nil)

func (s *OTPs) EnsureIndexes(context.Context) error { return nil }

func (s *OTPs) Upsert(_ context.Context, otp *models.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := *otp
	rec.CreatedAt = time.Now().UTC()
	if rec.ValidatedData != nil {
		data := *rec.ValidatedData
		rec.ValidatedData = &data
	}
	s.byEmail[otp.Email] = rec
	return nil
}

func (s *OTPs) FindByEmail(_ context.Context, email string) (*models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (s *OTPs) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, email)
	return nil
}

// Resets implements repository.PasswordResetRepository.
type Resets struct {
	mu      sync.Mutex
	byEmail map[string]models.PasswordReset
}

func NewResets() *Resets { return &Resets{byEmail: map[string]models.PasswordReset{}} }

var _ repository.PasswordResetRepository = (*Resets)(nil)

func (s *Resets) EnsureIndexes(context.Context) error { return nil }

func (s *Resets) Upsert(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[email] = models.PasswordReset{Email: email, Code: code, CreatedAt: time.Now().UTC()}
	return nil
}

func (s *Resets) FindByEmail(_ context.Context, email string) (*models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (s *Resets) MarkVerified(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return repository.ErrNotFound
	}
	rec.IsVerified = true
	s.byEmail[email] = rec
	return nil
}

func (s *Resets) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, email)
	return nil
}

// contents is the shared like/comment storage behind Posts and Events.
type contents struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Event
}

func newContents() contents {
	return contents{items: map[primitive.ObjectID]*models.Event{}}
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.Likes = cloneIDs(e.Likes)
	c.Comments = cloneIDs(e.Comments)
	return &c
}

func (s *contents) insert(e *models.Event) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.EnsureSets()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.ID] = cloneEvent(e)
}

func (s *contents) get(id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (s *contents) list(match func(*models.Event) bool) []*models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Event
	for _, e := range s.items {
		if match == nil || match(e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *contents) mutate(id primitive.ObjectID, fn func(*models.Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(e)
	return nil
}

func (s *contents) FindContent(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return &e.Content, nil
}

func (s *contents) AddLike(_ context.Context, id, userID primitive.ObjectID) error {
	return s.mutate(id, func(e *models.Event) { e.Likes = addID(e.Likes, userID) })
}

func (s *contents) RemoveLike(_ context.Context, id, userID primitive.ObjectID) error {
	return s.mutate(id, func(e *models.Event) { e.Likes = pullID(e.Likes, userID) })
}

func (s *contents) AppendComment(_ context.Context, id, commentID primitive.ObjectID) error {
	return s.mutate(id, func(e *models.Event) { e.Comments = append(e.Comments, commentID) })
}

func (s *contents) RemoveComment(_ context.Context, id, commentID primitive.ObjectID) error {
	return s.mutate(id, func(e *models.Event) { e.Comments = pullID(e.Comments, commentID) })
}

func (s *contents) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Posts implements repository.PostRepository.
type Posts struct {
	contents
}

func NewPosts() *Posts { return &Posts{newContents()} }

var _ repository.PostRepository = (*Posts)(nil)

func (s *Posts) EnsureIndexes(context.Context) error { return nil }

func (s *Posts) Create(_ context.Context, p *models.Post) error {
	e := &models.Event{Content: p.Content}
	s.insert(e)
	p.Content = e.Content
	return nil
}

func (s *Posts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return &models.Post{Content: e.Content}, nil
}

func toPosts(events []*models.Event) []models.Post {
	out := make([]models.Post, 0, len(events))
	for _, e := range events {
		out = append(out, models.Post{Content: e.Content})
	}
	return out
}

func (s *Posts) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	want := idSet(ids)
	return toPosts(s.list(func(e *models.Event) bool { return want[e.ID] })), nil
}

func (s *Posts) ListAll(context.Context) ([]models.Post, error) {
	return toPosts(s.list(nil)), nil
}

func (s *Posts) ListByAuthor(_ context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return toPosts(s.list(func(e *models.Event) bool { return e.Author == author })), nil
}

// Events implements repository.EventRepository. StatusWrites counts persisted status changes.
type Events struct {
	contents
	StatusWrites int
}

func NewEvents() *Events { return &Events{contents: newContents()} }

var _ repository.EventRepository = (*Events)(nil)

func (s *Events) EnsureIndexes(context.Context) error { return nil }

func (s *Events) Create(_ context.Context, e *models.Event) error {
	if e.Status == "" {
		e.Status = models.StatusUpcoming
	}
	s.insert(e)
	return nil
}

func (s *Events) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.get(id)
}

func (s *Events) ListAll(context.Context) ([]models.Event, error) {
	events := s.list(nil)
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		out = append(out, *e)
	}
	return out, nil
}

func (s *Events) SetStatus(_ context.Context, id primitive.ObjectID, status models.EventStatus) error {
	return s.mutate(id, func(e *models.Event) {
		e.Status = status
		s.StatusWrites++
	})
}

// Comments implements repository.CommentRepository.
type Comments struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Comment
}

func NewComments() *Comments { return &Comments{items: map[primitive.ObjectID]models.Comment{}} }

var _ repository.CommentRepository = (*Comments)(nil)

func (s *Comments) EnsureIndexes(context.Context) error { return nil }

func (s *Comments) Create(_ context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = *c
	return nil
}

func (s *Comments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Comments) list(match func(models.Comment) bool) []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.items {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Comments) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	want := idSet(ids)
	return s.list(func(c models.Comment) bool { return want[c.ID] }), nil
}

func (s *Comments) ListByParent(_ context.Context, parent primitive.ObjectID) ([]models.Comment, error) {
	return s.list(func(c models.Comment) bool { return c.Parent == parent }), nil
}

func (s *Comments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Comments) DeleteByParent(_ context.Context, parent primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.items {
		if c.Parent == parent {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored comments.
func (s *Comments) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
