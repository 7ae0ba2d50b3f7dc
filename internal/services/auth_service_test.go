package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
	"github.com/fathima-sithara/campus-service/internal/repository/memstore"
)

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()
	users := memstore.NewUsers()
	posts := memstore.NewPosts()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(users, posts, tokens, zap.NewNop())

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: "ravi4567", RollNumber: "22011234567", Email: validEmail, Password: string(hash)}
	require.NoError(t, users.Create(ctx, user))

	post := &models.Post{Content: models.Content{Caption: "hello", Author: user.ID}}
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, users.AddToSet(ctx, user.ID, repository.SetPosts, post.ID))
	// A stale reference to someone else's post is not returned.
	foreign := &models.Post{Content: models.Content{Caption: "not mine", Author: primitive.NewObjectID()}}
	require.NoError(t, posts.Create(ctx, foreign))
	require.NoError(t, users.AddToSet(ctx, user.ID, repository.SetPosts, foreign.ID))

	t.Run("success", func(t *testing.T) {
		token, profile, err := svc.Login(ctx, " RAVI_22011234567@hnbgu.edu.in", "Str0ng!pass")
		require.NoError(t, err)

		claims, err := tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)

		require.Len(t, profile.Posts, 1)
		assert.Equal(t, "hello", profile.Posts[0].Caption)
	})

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"wrong password", validEmail, "nope", ErrInvalidCredentials},
		{"unknown email", "ghost@hnbgu.edu.in", "Str0ng!pass", ErrInvalidCredentials},
		{"missing password", validEmail, "", ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
