package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment nesting is exactly one level deep: ParentID is either nil
// (top-level) or the id of a top-level comment on the same post.
type Comment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Content   string              `bson:"content" json:"content"`
	PostID    primitive.ObjectID  `bson:"postId" json:"postId"`
	AuthorID  primitive.ObjectID  `bson:"authorId" json:"authorId"`
	ParentID  *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	CreatedAt int64               `bson:"createdAt" json:"createdAt"`

	// Populated in responses only.
	Author  *UserSummary `bson:"-" json:"author,omitempty"`
	Replies []Comment    `bson:"-" json:"replies,omitempty"`
}
