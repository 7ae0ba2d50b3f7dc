package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAlumni  Role = "alumni"
	// RoleAdmin is never derived; it is assigned directly in the database.
	RoleAdmin Role = "admin"
)

// User is a registered member of the campus network.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	RollNumber     string               `bson:"rollnumber" json:"rollnumber"`
	Email          string               `bson:"email" json:"email"`
	FullName       string               `bson:"fullName" json:"fullName"`
	Password       string               `bson:"password" json:"-"`
	Department     string               `bson:"department" json:"department"`
	GraduationYear int                  `bson:"graduationYear" json:"graduationYear"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	Bio            string               `bson:"bio" json:"bio"`
	Gender         string               `bson:"gender,omitempty" json:"gender,omitempty"`
	Role           Role                 `bson:"role" json:"role"`
	IsVerified     bool                 `bson:"isVerified" json:"isVerified"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	Posts          []primitive.ObjectID `bson:"posts" json:"posts"`
	Bookmarks      []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	Events         []primitive.ObjectID `bson:"events" json:"events"`
	ResumeURL      string               `bson:"resumeUrl" json:"resumeUrl"`
	ResumeName     string               `bson:"resumeName" json:"resumeName"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// EnsureSets replaces nil ID slices with empty ones so array operators
// never hit a null field.
func (u *User) EnsureSets() {
	for _, s := range []*[]primitive.ObjectID{&u.Followers, &u.Following, &u.Posts, &u.Bookmarks, &u.Events} {
		if *s == nil {
			*s = []primitive.ObjectID{}
		}
	}
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func (u *User) HasBookmarked(id primitive.ObjectID) bool {
	return containsID(u.Bookmarks, id)
}

// UserSummary is the public projection embedded in content, comments and notifications.
type UserSummary struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	FullName       string             `json:"fullName"`
	ProfilePicture string             `json:"profilePicture"`
	Role           Role               `json:"role,omitempty"`
	Department     string             `json:"department,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		Department:     u.Department,
	}
}

// ProfileView is a user with authored and bookmarked posts expanded.
// The populated fields shadow the ID slices of the embedded User.
type ProfileView struct {
	User
	Posts     []Post `json:"posts"`
	Bookmarks []Post `json:"bookmarks"`
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
