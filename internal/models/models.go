package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one record of a tenant-scoped collection (projects/{project}/{collection}/{id}).
type Document struct {
	ProjectID  string            `gorm:"primaryKey;type:varchar(128)" json:"project_id"`
	Collection string            `gorm:"primaryKey;type:varchar(128)" json:"collection"`
	ID         string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Data       datatypes.JSONMap `gorm:"not null" json:"data"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// User is an identity known to the admin panel. Not tenant scoped: ProjectID says which
// tenant the user administers.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(50)" json:"role"`
	ProjectID    string    `gorm:"type:varchar(128);index" json:"project_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Session backs one issued access token; deleting the row revokes the token.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"` // token jti
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
