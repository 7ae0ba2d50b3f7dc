package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/campus-service/internal/models"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func contentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	}
}

// contentCollection implements ContentStore over either the posts or the events collection.
type contentCollection struct {
	col *mongo.Collection
}

func (c contentCollection) FindContent(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	var content models.Content
	if err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&content); err != nil {
		return nil, translate(err)
	}
	return &content, nil
}

func (c contentCollection) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return c.update(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (c contentCollection) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return c.update(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (c contentCollection) AppendComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return c.update(ctx, id, bson.M{"$push": bson.M{"comments": commentID}})
}

func (c contentCollection) RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return c.update(ctx, id, bson.M{"$pull": bson.M{"comments": commentID}})
}

func (c contentCollection) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c contentCollection) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := c.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c contentCollection) insert(ctx context.Context, doc any, content *models.Content) error {
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now().UTC()
	}
	content.EnsureSets()
	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		content.ID = oid
	}
	return nil
}

type mongoPostRepo struct {
	contentCollection
}

func NewMongoPostRepo(db *mongo.Database) PostRepository {
	return &mongoPostRepo{contentCollection{col: db.Collection("posts")}}
}

func (r *mongoPostRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, contentIndexes())
	return err
}

func (r *mongoPostRepo) Create(ctx context.Context, p *models.Post) error {
	return r.insert(ctx, p, &p.Content)
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoPostRepo) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *mongoPostRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoPostRepo) ListAll(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoPostRepo) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author": author})
}

type mongoEventRepo struct {
	contentCollection
}

func NewMongoEventRepo(db *mongo.Database) EventRepository {
	return &mongoEventRepo{contentCollection{col: db.Collection("events")}}
}

func (r *mongoEventRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, contentIndexes())
	return err
}

func (r *mongoEventRepo) Create(ctx context.Context, e *models.Event) error {
	if e.Status == "" {
		e.Status = models.StatusUpcoming
	}
	return r.insert(ctx, e, &e.Content)
}

func (r *mongoEventRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *mongoEventRepo) ListAll(ctx context.Context) ([]models.Event, error) {
	cur, err := r.col.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, err
	}
	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.EventStatus) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"eventStatus": status}})
}

type mongoCommentRepo struct {
	col *mongo.Collection
}

func NewMongoCommentRepo(db *mongo.Database) CommentRepository {
	return &mongoCommentRepo{col: db.Collection("comments")}
}

func (r *mongoCommentRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *mongoCommentRepo) Create(ctx context.Context, c *models.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *mongoCommentRepo) find(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *mongoCommentRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoCommentRepo) ListByParent(ctx context.Context, parent primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"post": parent})
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCommentRepo) DeleteByParent(ctx context.Context, parent primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"post": parent})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
