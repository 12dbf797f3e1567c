package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a single user-owned note. UserID stores the owner's ObjectID hex
// and is the authorization gate for every non-public operation.
type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Tags      []string           `bson:"tags" json:"tags"`
	IsPinned  bool               `bson:"isPinned" json:"isPinned"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	UserID    string             `bson:"userId" json:"userId"`
	CreatedOn time.Time          `bson:"createdOn" json:"createdOn"`
	UpdatedOn time.Time          `bson:"updatedOn" json:"updatedOn"`
}
