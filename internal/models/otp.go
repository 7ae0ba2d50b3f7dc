package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignupData is the registration field set captured when a signup code is issued.
// Password holds a bcrypt hash, never the plaintext.
type SignupData struct {
	Firstname  string `bson:"firstname,omitempty"`
	Lastname   string `bson:"lastname,omitempty"`
	Department string `bson:"department,omitempty"`
	Year       int    `bson:"year,omitempty"`
	Password   string `bson:"password,omitempty"`
}

// OTP is the signup verification record; expired by a TTL index on CreatedAt.
type OTP struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Code          string             `bson:"otp"`
	ValidatedData *SignupData        `bson:"validatedData,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// PasswordReset is the reset verification record; expired by a TTL index on CreatedAt.
type PasswordReset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Email      string             `bson:"email"`
	Code       string             `bson:"otp"`
	IsVerified bool               `bson:"isVerified"`
	CreatedAt  time.Time          `bson:"createdAt"`
}
