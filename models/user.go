package models

import "time"

// User is a customer account. Registration, login and profile editing live in
// a separate service; dispatch only loads users to address notifications.
type User struct {
	ID        string    `bson:"id" json:"id"`
	FullName  string    `bson:"full_name" json:"fullName"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
