package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/campus-service/internal/models"
)

// defaultCodeTTL applies when no positive lifetime is configured.
const defaultCodeTTL = 15 * time.Minute

// codeIndexes keys codes by email and lets Mongo expire them ttl after createdAt.
func codeIndexes(ttl time.Duration) []mongo.IndexModel {
	if ttl <= 0 {
		ttl = defaultCodeTTL
	}
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds()))},
	}
}

type mongoOTPRepo struct {
	col *mongo.Collection
	ttl time.Duration
}

// NewMongoOTPRepo stores signup codes that live for ttl.
func NewMongoOTPRepo(db *mongo.Database, ttl time.Duration) OTPRepository {
	return &mongoOTPRepo{col: db.Collection("otps"), ttl: ttl}
}

func (r *mongoOTPRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, codeIndexes(r.ttl))
	return err
}

// Upsert replaces the live code for the email and restarts its TTL.
func (r *mongoOTPRepo) Upsert(ctx context.Context, otp *models.OTP) error {
	set := bson.M{"otp": otp.Code, "createdAt": time.Now().UTC()}
	update := bson.M{"$set": set}
	if otp.ValidatedData != nil {
		set["validatedData"] = otp.ValidatedData
	} else {
		update["$unset"] = bson.M{"validatedData": ""}
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"email": otp.Email}, update, options.Update().SetUpsert(true))
	return translate(err)
}

func (r *mongoOTPRepo) FindByEmail(ctx context.Context, email string) (*models.OTP, error) {
	var o models.OTP
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *mongoOTPRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"email": email})
	return err
}

type mongoPasswordResetRepo struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewMongoPasswordResetRepo(db *mongo.Database, ttl time.Duration) PasswordResetRepository {
	return &mongoPasswordResetRepo{col: db.Collection("passwordresets"), ttl: ttl}
}

func (r *mongoPasswordResetRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, codeIndexes(r.ttl))
	return err
}

func (r *mongoPasswordResetRepo) Upsert(ctx context.Context, email, code string) error {
	update := bson.M{"$set": bson.M{"otp": code, "isVerified": false, "createdAt": time.Now().UTC()}}
	_, err := r.col.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return translate(err)
}

func (r *mongoPasswordResetRepo) FindByEmail(ctx context.Context, email string) (*models.PasswordReset, error) {
	var pr models.PasswordReset
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&pr); err != nil {
		return nil, translate(err)
	}
	return &pr, nil
}

func (r *mongoPasswordResetRepo) MarkVerified(ctx context.Context, email string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"isVerified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"email": email})
	return err
}
