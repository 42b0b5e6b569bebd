package users

import "time"

// User mirrors the identity provider's account. ID is the provider's stable
// subject claim, so repeated logins upsert the same row.
type User struct {
	ID              string `gorm:"primaryKey" json:"id"`
	Email           string `gorm:"uniqueIndex:idx_users_email" json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	ProfileImageURL string `json:"profileImageUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
