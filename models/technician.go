package models

import "time"

// Technician is read-only to the dispatch core.
type Technician struct {
	ID        string    `bson:"id" json:"id"`
	FullName  string    `bson:"full_name" json:"fullName"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Skills    []string  `bson:"skills" json:"skills"`
	Verified  bool      `bson:"verified" json:"verified"`
	Location  GeoPoint  `bson:"location" json:"location"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CandidateSummary is what the directory returns for each match.
type CandidateSummary struct {
	ID             string  `bson:"id" json:"id"`
	FullName       string  `bson:"full_name" json:"fullName"`
	DistanceMeters float64 `bson:"distance" json:"distanceMeters"`
}
