package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ReactionType string

const (
	ReactionLike ReactionType = "LIKE"
	ReactionClap ReactionType = "CLAP"
)

func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionClap
}

// Reaction holds a user's single active reaction on a post. At most one
// row exists per (postId, userId) pair.
type Reaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      ReactionType       `bson:"type" json:"type"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
