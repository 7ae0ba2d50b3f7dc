package services

import (
	"bytes"
	"context"
	"path"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/models"
	"github.com/fathima-sithara/campus-service/internal/repository"
)

// ProfileService covers profile reads and edits, suggestions, resumes and bookmarks.
type ProfileService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	media  MediaHost
	logger *zap.Logger
}

func NewProfileService(users repository.UserRepository, posts repository.PostRepository, media MediaHost, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, posts: posts, media: media, logger: logger}
}

// ProfileEdit carries the optional fields of a profile edit.
type ProfileEdit struct {
	Bio    string
	Gender string
	Photo  *Upload
}

func (s *ProfileService) Get(ctx context.Context, id primitive.ObjectID) (*models.ProfileView, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "find user")
	}
	posts, err := s.posts.FindManyByIDs(ctx, user.Posts)
	if err != nil {
		return nil, internal("load posts", err)
	}
	bookmarks, err := s.posts.FindManyByIDs(ctx, user.Bookmarks)
	if err != nil {
		return nil, internal("load bookmarks", err)
	}
	return &models.ProfileView{User: *user, Posts: nonNilPosts(posts), Bookmarks: nonNilPosts(bookmarks)}, nil
}

// Edit applies the non-empty fields of edit. A new photo is hosted before anything is written.
func (s *ProfileService) Edit(ctx context.Context, userID primitive.ObjectID, edit ProfileEdit) (*models.User, error) {
	var upd repository.ProfileUpdate
	if bio := strings.TrimSpace(edit.Bio); bio != "" {
		upd.Bio = &bio
	}
	if g := strings.ToLower(strings.TrimSpace(edit.Gender)); g != "" {
		if g != "male" && g != "female" {
			return nil, invalid("Gender must be male or female")
		}
		upd.Gender = &g
	}
	if edit.Photo != nil && len(edit.Photo.Data) > 0 {
		url, err := s.media.HostImage(ctx, userID.Hex(), edit.Photo.Filename, edit.Photo.Data)
		if err != nil {
			return nil, delivery("Failed to process image", err)
		}
		upd.ProfilePicture = &url
	}

	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "update profile")
	}
	return user, nil
}

// Suggested lists every other user.
func (s *ProfileService) Suggested(ctx context.Context, userID primitive.ObjectID) ([]models.User, error) {
	users, err := s.users.ListExcept(ctx, userID)
	if err != nil {
		return nil, internal("list users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

var pdfMagic = []byte("%PDF-")

// isPDF trusts neither the client's content type nor the name alone: the
// file must be named .pdf and start with the PDF header.
func isPDF(u Upload) bool {
	return strings.EqualFold(path.Ext(u.Filename), ".pdf") && bytes.HasPrefix(u.Data, pdfMagic)
}

// UploadResume hosts a PDF resume and replaces any previous one. Faculty cannot hold resumes.
func (s *ProfileService) UploadResume(ctx context.Context, userID primitive.ObjectID, file Upload) (*models.User, error) {
	if len(file.Data) == 0 {
		return nil, invalid("No file uploaded")
	}
	if !isPDF(file) {
		return nil, invalid("Only PDF files are allowed")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "find user")
	}
	if user.Role == models.RoleFaculty {
		return nil, ErrFacultyResume
	}

	url, err := s.media.HostDocument(ctx, userID.Hex(), file.Filename, "application/pdf", file.Data)
	if err != nil {
		return nil, delivery("Failed to upload resume", err)
	}
	if err := s.users.SetResume(ctx, userID, url, file.Filename); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "set resume")
	}
	if user.ResumeURL != "" {
		s.removeRemote(ctx, user.ResumeURL)
	}

	user.ResumeURL, user.ResumeName = url, file.Filename
	return user, nil
}

func (s *ProfileService) DeleteResume(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, ErrUserNotFound, "find user")
	}
	if user.ResumeURL == "" {
		return ErrResumeNotFound
	}
	if err := s.users.SetResume(ctx, userID, "", ""); err != nil {
		return notFoundAs(err, ErrUserNotFound, "clear resume")
	}
	s.removeRemote(ctx, user.ResumeURL)
	return nil
}

// removeRemote deletes a hosted file; failures only leave an orphaned object.
func (s *ProfileService) removeRemote(ctx context.Context, url string) {
	if err := s.media.Remove(ctx, url); err != nil {
		s.logger.Warn("failed to delete hosted file", zap.String("url", url), zap.Error(err))
	}
}

// ToggleBookmark adds or removes a post from the user's bookmarks and
// reports whether it is now bookmarked.
func (s *ProfileService) ToggleBookmark(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return false, notFoundAs(err, ErrPostNotFound, "find post")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, notFoundAs(err, ErrUserNotFound, "find user")
	}
	if user.HasBookmarked(postID) {
		if err := s.users.PullFromSet(ctx, userID, repository.SetBookmarks, postID); err != nil {
			return false, internal("remove bookmark", err)
		}
		return false, nil
	}
	if err := s.users.AddToSet(ctx, userID, repository.SetBookmarks, postID); err != nil {
		return false, internal("add bookmark", err)
	}
	return true, nil
}
