package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

func (s *Store) FindReaction(ctx context.Context, postID, userID primitive.ObjectID) (*models.Reaction, error) {
	var reaction models.Reaction
	err := s.reactions.FindOne(ctx, bson.M{"postId": postID, "userId": userID}).Decode(&reaction)
	if err != nil {
		return nil, mapErr(err)
	}
	return &reaction, nil
}

func (s *Store) InsertReaction(ctx context.Context, reaction *models.Reaction) error {
	if reaction.ID.IsZero() {
		reaction.ID = primitive.NewObjectID()
	}
	_, err := s.reactions.InsertOne(ctx, reaction)
	return mapErr(err)
}

func (s *Store) UpdateReactionType(ctx context.Context, id primitive.ObjectID, t models.ReactionType) error {
	result, err := s.reactions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"type": t}})
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReaction(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.reactions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListReactionsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Reaction, error) {
	cursor, err := s.reactions.Find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reactions := []models.Reaction{}
	if err := cursor.All(ctx, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}
