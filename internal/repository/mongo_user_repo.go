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

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &mongoUserRepo{col: db.Collection("users")}
}

func (r *mongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "rollnumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.EnsureSets()
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) FindByRollNumber(ctx context.Context, roll string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"rollnumber": roll})
}

func (r *mongoUserRepo) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoUserRepo) ListExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$ne": id}})
}

func (r *mongoUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.ProfilePicture != nil {
		set["profilePicture"] = *upd.ProfilePicture
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) SetPassword(ctx context.Context, email, hash string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()}})
}

func (r *mongoUserRepo) SetResume(ctx context.Context, id primitive.ObjectID, url, name string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"resumeUrl": url, "resumeName": name, "updatedAt": time.Now().UTC()}})
}

func (r *mongoUserRepo) AddToSet(ctx context.Context, id primitive.ObjectID, set UserSet, value primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{string(set): value}})
}

func (r *mongoUserRepo) PullFromSet(ctx context.Context, id primitive.ObjectID, set UserSet, value primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{string(set): value}})
}

func (r *mongoUserRepo) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
