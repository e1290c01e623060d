package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Follow is a directed edge: follower -> following. Self-follows are
// rejected before this ever reaches storage.
type Follow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID  primitive.ObjectID `bson:"followerId" json:"followerId"`
	FollowingID primitive.ObjectID `bson:"followingId" json:"followingId"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
}
