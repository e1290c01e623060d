package mongostore

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/models"
)

// FindOrCreateTag is an atomic upsert keyed by slug, so two concurrent
// creates with the same tag name still end up sharing one tag row.
func (s *Store) FindOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{"$setOnInsert": bson.M{
		"_id":  primitive.NewObjectID(),
		"name": name,
		"slug": slug,
	}}

	var tag models.Tag
	err := s.tags.FindOneAndUpdate(ctx, bson.M{"slug": slug}, update, opts).Decode(&tag)
	if err != nil {
		return nil, mapErr(err)
	}
	return &tag, nil
}

func (s *Store) ReplacePostTags(ctx context.Context, postID primitive.ObjectID, tagIDs []primitive.ObjectID) error {
	if _, err := s.postTags.DeleteMany(ctx, bson.M{"postId": postID}); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := lo.Map(tagIDs, func(tagID primitive.ObjectID, _ int) interface{} {
		return models.PostTag{ID: primitive.NewObjectID(), PostID: postID, TagID: tagID}
	})
	_, err := s.postTags.InsertMany(ctx, links)
	return mapErr(err)
}

func (s *Store) TagsForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Tag, error) {
	cursor, err := s.postTags.Find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []models.PostTag
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.Tag{}, nil
	}

	tagIDs := lo.Map(links, func(pt models.PostTag, _ int) primitive.ObjectID {
		return pt.TagID
	})

	tagCursor, err := s.tags.Find(ctx, bson.M{"_id": bson.M{"$in": tagIDs}})
	if err != nil {
		return nil, err
	}
	defer tagCursor.Close(ctx)

	tags := []models.Tag{}
	if err := tagCursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
