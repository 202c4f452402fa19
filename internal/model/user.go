package model

import "time"

// UserAccount represents one registered person.
type UserAccount struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Username     string    `json:"username" gorm:"size:64;not null;index"`
	EmailOrPhone string    `json:"emailOrPhone" gorm:"column:email_or_phone;uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ProfileImage *string   `json:"profileImage" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName pins the table name independent of the struct name.
func (UserAccount) TableName() string {
	return "users"
}

// PublicUser is the account projection returned by every read path.
type PublicUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	EmailOrPhone string    `json:"emailOrPhone"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips the password hash.
func (u *UserAccount) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		EmailOrPhone: u.EmailOrPhone,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
