package model

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleShopOwner
}

type Profile struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	FullName   string    `json:"full_name,omitempty" bson:"full_name,omitempty" validate:"omitempty,max=100"`
	Phone      string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=20"`
	AvatarPath string    `json:"-" bson:"avatar_path,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty" bson:"-"`
	Role       Role      `json:"role" bson:"role" validate:"required,oneof=customer shop_owner"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// User is the credential record behind an identity.
type User struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email             string    `json:"email" bson:"email"`
	PasswordHash      string    `json:"-" bson:"password_hash"`
	Role              Role      `json:"role" bson:"role"`
	FullName          string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	EmailConfirmed    bool      `json:"email_confirmed" bson:"email_confirmed"`
	ConfirmationToken string    `json:"-" bson:"confirmation_token,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// Session backs one refresh token. Revoked sessions reject refresh.
type Session struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    string     `json:"user_id" bson:"user_id"`
	ExpiresAt time.Time  `json:"expires_at" bson:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" bson:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     Role   `json:"role" validate:"required,oneof=customer shop_owner"`
}

type SignUpResult struct {
	User                 *User        `json:"user"`
	Session              *AuthSession `json:"session,omitempty"`
	ConfirmationRequired bool         `json:"confirmation_required"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
	Profile      *Profile  `json:"profile,omitempty"`
}
