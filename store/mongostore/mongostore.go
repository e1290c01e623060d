// Package mongostore is the MongoDB implementation of the store
// contract. Uniqueness invariants (email, slug, reaction and follow
// pairs) are enforced by unique indexes created at startup, see
// database.EnsureIndexes.
package mongostore

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/store"
)

type Store struct {
	users     *mongo.Collection
	posts     *mongo.Collection
	tags      *mongo.Collection
	postTags  *mongo.Collection
	comments  *mongo.Collection
	reactions *mongo.Collection
	follows   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		users:     db.Collection("users"),
		posts:     db.Collection("posts"),
		tags:      db.Collection("tags"),
		postTags:  db.Collection("post_tags"),
		comments:  db.Collection("comments"),
		reactions: db.Collection("reactions"),
		follows:   db.Collection("follows"),
	}
}

// mapErr translates driver errors into the store sentinels the
// managers branch on.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

// caseInsensitive escapes the search term so user input is matched
// literally, not as a regex.
func caseInsensitive(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}
