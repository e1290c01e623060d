package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Tag identity is keyed by slug: two names that normalize to the same
// slug are the same tag.
type Tag struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}

// PostTag links a post to a tag. Links are replaced wholesale when a
// post update supplies a new tag list, never patched one by one.
type PostTag struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID primitive.ObjectID `bson:"postId" json:"postId"`
	TagID  primitive.ObjectID `bson:"tagId" json:"tagId"`
}
