package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPublished PostStatus = "PUBLISHED"
)

func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Content     string             `bson:"content" json:"content"`
	Excerpt     string             `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	CoverImage  string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Status      PostStatus         `bson:"status" json:"status"`
	AuthorID    primitive.ObjectID `bson:"authorId" json:"authorId"`
	PublishedAt *int64             `bson:"publishedAt,omitempty" json:"publishedAt"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64              `bson:"updatedAt" json:"updatedAt"`

	// Populated in responses only.
	Author *UserSummary `bson:"-" json:"author,omitempty"`
	Tags   []Tag        `bson:"-" json:"tags,omitempty"`
}
