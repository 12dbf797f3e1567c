package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth provider tags stored on a user record.
const (
	ProviderLocal     = "local"
	ProviderMicrosoft = "microsoft"
)

// User represents a registered account. Password holds the bcrypt hash and
// is never serialized to JSON; it is empty for OAuth-only accounts.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	Password     string             `bson:"password,omitempty" json:"-"`
	AuthProvider string             `bson:"authProvider" json:"authProvider"`
	MicrosoftID  string             `bson:"microsoftId,omitempty" json:"microsoftId,omitempty"`
	TenantID     string             `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	CreatedOn    time.Time          `bson:"createdOn" json:"createdOn"`
}

// PublicProfile is the safe subset exposed on unauthenticated lookups.
type PublicProfile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
}
