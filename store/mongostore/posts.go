package mongostore

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/models"
	"inkwell/store"
)

func (s *Store) InsertPost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	_, err := s.posts.InsertOne(ctx, post)
	return mapErr(err)
}

func (s *Store) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

func (s *Store) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"slug": slug}).Decode(&post)
	if err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	result, err := s.posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePost removes the post and cascades to its tag links, comments
// and reactions. The deletes are sequential, not transactional; a
// failure partway leaves orphans that the next delete attempt cleans.
func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}

	if _, err := s.postTags.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return err
	}
	if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return err
	}
	if _, err := s.reactions.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return err
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AuthorID != nil {
		query["authorId"] = *filter.AuthorID
	}
	if filter.Search != "" {
		query["$or"] = []bson.M{
			{"title": caseInsensitive(filter.Search)},
			{"content": caseInsensitive(filter.Search)},
			{"excerpt": caseInsensitive(filter.Search)},
		}
	}
	if filter.TagSlug != "" {
		postIDs, err := s.postIDsForTagSlug(ctx, filter.TagSlug)
		if err != nil {
			return nil, 0, err
		}
		query["_id"] = bson.M{"$in": postIDs}
	}

	total, err := s.posts.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := s.posts.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *Store) postIDsForTagSlug(ctx context.Context, slug string) ([]primitive.ObjectID, error) {
	var tag models.Tag
	err := s.tags.FindOne(ctx, bson.M{"slug": slug}).Decode(&tag)
	if err != nil {
		// Unknown tag matches nothing.
		if mapErr(err) == store.ErrNotFound {
			return []primitive.ObjectID{}, nil
		}
		return nil, err
	}

	cursor, err := s.postTags.Find(ctx, bson.M{"tagId": tag.ID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []models.PostTag
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return lo.Map(links, func(pt models.PostTag, _ int) primitive.ObjectID {
		return pt.PostID
	}), nil
}
