package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

func (s *Store) FindFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (*models.Follow, error) {
	var follow models.Follow
	err := s.follows.FindOne(ctx, bson.M{"followerId": followerID, "followingId": followingID}).Decode(&follow)
	if err != nil {
		return nil, mapErr(err)
	}
	return &follow, nil
}

func (s *Store) InsertFollow(ctx context.Context, follow *models.Follow) error {
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	_, err := s.follows.InsertOne(ctx, follow)
	return mapErr(err)
}

func (s *Store) DeleteFollow(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.follows.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.follows.CountDocuments(ctx, bson.M{"followingId": userID})
}
