package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// PhoneRegex matches an Indian mobile number with the +91 country code.
var PhoneRegex = regexp.MustCompile(`^\+91[6-9]\d{9}$`)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessName string        `bson:"businessName" json:"businessName"`
	Email        string        `bson:"email" json:"email"`
	Phone        string        `bson:"phone" json:"phone"`
	FullName     string        `bson:"fullName,omitempty" json:"fullName,omitempty"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`

	IsEmailVerified bool `bson:"isEmailVerified" json:"isEmailVerified"`

	// At most one live refresh token per user; overwriting revokes the old one.
	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`

	// One-time token pairs: token and expiry are set and cleared together.
	ForgotPasswordToken     string     `bson:"forgotPasswordToken,omitempty" json:"-"`
	ForgotPasswordExpiry    *time.Time `bson:"forgotPasswordExpiry,omitempty" json:"-"`
	EmailVerificationToken  string     `bson:"emailVerificationToken,omitempty" json:"-"`
	EmailVerificationExpiry *time.Time `bson:"emailVerificationExpiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Sanitized returns a copy with credentials and token material stripped.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	u.ForgotPasswordToken = ""
	u.ForgotPasswordExpiry = nil
	u.EmailVerificationToken = ""
	u.EmailVerificationExpiry = nil
	return &u
}

// DisplayName is the name snapshotted onto quotation requests.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.BusinessName
}
