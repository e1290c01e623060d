package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

func (s *Store) InsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	_, err := s.comments.InsertOne(ctx, comment)
	return mapErr(err)
}

func (s *Store) FindCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return nil, mapErr(err)
	}
	return &comment, nil
}

// DeleteComment removes the comment and any replies anchored to it.
func (s *Store) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	_, err = s.comments.DeleteMany(ctx, bson.M{"parentId": id})
	return err
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	cursor, err := s.comments.Find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
