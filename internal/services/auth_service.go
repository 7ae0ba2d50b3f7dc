package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// AuthService exchanges credentials for a session token.
type AuthService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, posts repository.PostRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, posts: posts, tokens: tokens, logger: logger}
}

// Login returns a signed token and the user's profile with their own posts expanded.
func (s *AuthService) Login(ctx context.Context, rawEmail, password string) (string, *models.ProfileView, error) {
	email := NormalizeEmail(rawEmail)
	if email == "" || password == "" {
		return "", nil, invalid("Something is missing, please check!")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, notFoundAs(err, ErrInvalidCredentials, "find user by email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, internal("compare password", err)
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return "", nil, internal("issue token", err)
	}

	posts, err := s.posts.FindManyByIDs(ctx, user.Posts)
	if err != nil {
		return "", nil, internal("load user posts", err)
	}
	own := posts[:0]
	for _, p := range posts {
		if p.Author == user.ID {
			own = append(own, p)
		}
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.Hex()))
	return token, &models.ProfileView{User: *user, Posts: nonNilPosts(own), Bookmarks: []models.Post{}}, nil
}

func nonNilPosts(p []models.Post) []models.Post {
	if p == nil {
		return []models.Post{}
	}
	return p
}
