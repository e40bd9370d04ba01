package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account document
// Collection: users
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Name      string               `bson:"name" json:"name"`
	Status    string               `bson:"status" json:"status"`
	PostIDs   []primitive.ObjectID `bson:"post_ids" json:"post_ids"`
}
