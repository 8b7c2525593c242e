package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the principal kind carried in access tokens
type Role string

// Role constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user document in the users collection
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Mobile       int64              `bson:"mobile" json:"mobile"`
	PasswordHash string             `bson:"password" json:"-"` // Never serialize password hash
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate holds the fields to change on a user. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	Mobile       *int64
	PasswordHash *string
	ProfileImage *string
}

// IsEmpty reports whether the update changes nothing
func (u *UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Mobile == nil && u.PasswordHash == nil && u.ProfileImage == nil
}

// UserFilter narrows down a users list query
type UserFilter struct {
	Search string
	Page   int
	Count  int
}

// MobileNumber is a mobile number as received from clients.
// JSON bodies may carry it either as a string or as a number.
type MobileNumber string

// UnmarshalJSON accepts both `"9876543210"` and `9876543210`
func (m *MobileNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MobileNumber(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("mobile must be a string or a number")
	}
	*m = MobileNumber(n.String())
	return nil
}

// UserResponse is the public representation of a user
type UserResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Mobile          int64     `json:"mobile"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewUserResponse builds a UserResponse, resolving the image against uploadsURL
func NewUserResponse(user *User, uploadsURL string) UserResponse {
	resp := UserResponse{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		Mobile:       user.Mobile,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if user.ProfileImage != "" {
		resp.ProfileImageURL = uploadsURL + "/" + user.ProfileImage
	}
	return resp
}
