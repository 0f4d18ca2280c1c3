package user

import (
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
)

// Profile mirrors an identity owned by the auth provider, keyed by the same id.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Email     *string   `gorm:"type:text"`
	FullName  *string   `gorm:"column:full_name;type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

type RoleAssignment struct {
	ID     string     `gorm:"type:uuid;primaryKey"`
	UserID string     `gorm:"type:uuid;not null;uniqueIndex"`
	Role   authz.Role `gorm:"type:text;not null"`
}

func (RoleAssignment) TableName() string {
	return "user_roles"
}

// Identity is the caller as asserted by the auth provider.
type Identity struct {
	ID       string
	Email    string
	FullName string
}

type Member struct {
	Profile
	Role authz.Role
}

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
}

// Dependents is every row that references a user and must go before the
// identity does. The deletion returns it so it can be put back.
type Dependents struct {
	Profile     *Profile
	Role        *RoleAssignment
	Submissions []submissions.Submission
}
