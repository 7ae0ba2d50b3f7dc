package services

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// populator expands author and comment references for a batch of content.
type populator struct {
	users    repository.UserRepository
	comments repository.CommentRepository
}

type expansion struct {
	authors  map[primitive.ObjectID]*models.UserSummary
	comments map[primitive.ObjectID]models.Comment
}

func (p populator) expand(ctx context.Context, items []*models.Content) (*expansion, error) {
	var commentIDs []primitive.ObjectID
	for _, c := range items {
		commentIDs = append(commentIDs, c.Comments...)
	}

	ex := &expansion{
		authors:  map[primitive.ObjectID]*models.UserSummary{},
		comments: map[primitive.ObjectID]models.Comment{},
	}
	if len(commentIDs) > 0 {
		cs, err := p.comments.FindManyByIDs(ctx, commentIDs)
		if err != nil {
			return nil, internal("load comments", err)
		}
		for _, c := range cs {
			ex.comments[c.ID] = c
		}
	}

	seen := map[primitive.ObjectID]bool{}
	var authorIDs []primitive.ObjectID
	addAuthor := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			authorIDs = append(authorIDs, id)
		}
	}
	for _, c := range items {
		addAuthor(c.Author)
	}
	for _, c := range ex.comments {
		addAuthor(c.Author)
	}
	if err := p.loadAuthors(ctx, authorIDs, ex.authors); err != nil {
		return nil, err
	}
	return ex, nil
}

func (p populator) loadAuthors(ctx context.Context, ids []primitive.ObjectID, into map[primitive.ObjectID]*models.UserSummary) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := p.users.FindManyByIDs(ctx, ids)
	if err != nil {
		return internal("load authors", err)
	}
	for i := range users {
		into[users[i].ID] = users[i].Summary()
	}
	return nil
}

// commentsOf returns the comments referenced by c, newest first.
// Dangling references are skipped.
func (ex *expansion) commentsOf(c *models.Content) []models.CommentView {
	out := make([]models.CommentView, 0, len(c.Comments))
	for _, id := range c.Comments {
		cm, ok := ex.comments[id]
		if !ok {
			continue
		}
		out = append(out, models.CommentView{Comment: cm, Author: ex.authors[cm.Author]})
	}
	sortComments(out)
	return out
}

func sortComments(cs []models.CommentView) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].CreatedAt.After(cs[j].CreatedAt) })
}

func (p populator) posts(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	items := make([]*models.Content, len(posts))
	for i := range posts {
		posts[i].EnsureSets()
		items[i] = &posts[i].Content
	}
	ex, err := p.expand(ctx, items)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostView, len(posts))
	for i := range posts {
		out[i] = models.PostView{
			Post:     posts[i],
			Author:   ex.authors[posts[i].Author],
			Comments: ex.commentsOf(&posts[i].Content),
		}
	}
	return out, nil
}

func (p populator) events(ctx context.Context, events []models.Event) ([]models.EventView, error) {
	items := make([]*models.Content, len(events))
	for i := range events {
		events[i].EnsureSets()
		items[i] = &events[i].Content
	}
	ex, err := p.expand(ctx, items)
	if err != nil {
		return nil, err
	}
	out := make([]models.EventView, len(events))
	for i := range events {
		out[i] = models.EventView{
			Event:    events[i],
			Author:   ex.authors[events[i].Author],
			Comments: ex.commentsOf(&events[i].Content),
		}
	}
	return out, nil
}
