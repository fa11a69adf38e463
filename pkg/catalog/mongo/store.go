// Package mongo serves the character catalog from MongoDB.
//
// Documents use the hosted row layout ([catalog.Record] and
// [catalog.CategoryRecord] bson tags) in the collections "characters" and
// "categories".
//
// [catalog.Record]: github.com/matzehuels/heightcompare/pkg/catalog.Record
// [catalog.CategoryRecord]: github.com/matzehuels/heightcompare/pkg/catalog.CategoryRecord
package mongo

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
)

const (
	charactersCollection = "characters"
	categoriesCollection = "categories"
)

// Store is a [catalog.Source] over a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the server (retrying under
// [cache.DefaultBackoff]) and selects database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	err = cache.DefaultBackoff.Do(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes used by the queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(charactersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "cat_ids", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

// Replace overwrites both collections.
func (s *Store) Replace(ctx context.Context, chars []catalog.Character, cats []catalog.Category) error {
	catColl := s.db.Collection(categoriesCollection)
	if _, err := catColl.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: clear categories: %w", err)
	}
	if len(cats) > 0 {
		docs := make([]any, len(cats))
		for i, c := range cats {
			docs[i] = catalog.CategoryRecord{ID: c.ID, Name: c.Name, Path: c.Path, PID: c.ParentID}
		}
		if _, err := catColl.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("mongo: insert categories: %w", err)
		}
	}

	charColl := s.db.Collection(charactersCollection)
	if _, err := charColl.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: clear characters: %w", err)
	}
	if len(chars) > 0 {
		docs := make([]any, len(chars))
		for i, c := range chars {
			docs[i] = catalog.ToRecord(c)
		}
		if _, err := charColl.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("mongo: insert characters: %w", err)
		}
	}
	return nil
}

// Categories returns every category ordered by ID.
func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	cur, err := s.db.Collection(categoriesCollection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: categories: %w", err)
	}
	var recs []catalog.CategoryRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongo: decode categories: %w", err)
	}
	out := make([]catalog.Category, len(recs))
	for i, r := range recs {
		out[i] = catalog.FromCategoryRecord(r)
	}
	return out, nil
}

func (s *Store) convert(ctx context.Context, recs []catalog.Record) ([]catalog.Character, error) {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(recs, cats), nil
}

func (s *Store) find(ctx context.Context, filter any, opts *options.FindOptions) ([]catalog.Character, error) {
	cur, err := s.db.Collection(charactersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: characters: %w", err)
	}
	var recs []catalog.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongo: decode characters: %w", err)
	}
	return s.convert(ctx, recs)
}

func byName() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
}

// Characters returns every character ordered by name.
func (s *Store) Characters(ctx context.Context) ([]catalog.Character, error) {
	return s.find(ctx, bson.D{}, byName())
}

// ByCategory returns characters whose cat_ids contain id.
func (s *Store) ByCategory(ctx context.Context, id int) ([]catalog.Character, error) {
	return s.find(ctx, bson.D{{Key: "cat_ids", Value: id}}, byName())
}

// Search matches names case-insensitively by substring.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]catalog.Character, error) {
	opts := byName()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.D{{Key: "name", Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(q)},
		{Key: "$options", Value: "i"},
	}}}
	return s.find(ctx, filter, opts)
}

// Random draws n characters with $sample.
func (s *Store) Random(ctx context.Context, n int) ([]catalog.Character, error) {
	if n <= 0 {
		return nil, nil
	}
	cur, err := s.db.Collection(charactersCollection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: n}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo: sample: %w", err)
	}
	var recs []catalog.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongo: decode sample: %w", err)
	}
	return s.convert(ctx, recs)
}

// ByID returns one character or a CHARACTER_NOT_FOUND error.
func (s *Store) ByID(ctx context.Context, id string) (catalog.Character, error) {
	var rec catalog.Record
	err := s.db.Collection(charactersCollection).FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Character{}, errors.New(errors.ErrCodeCharacterNotFound, "character %q not found", id)
	}
	if err != nil {
		return catalog.Character{}, fmt.Errorf("mongo: character %s: %w", id, err)
	}
	chars, err := s.convert(ctx, []catalog.Record{rec})
	if err != nil {
		return catalog.Character{}, err
	}
	return chars[0], nil
}

// Stats summarizes every stored character.
func (s *Store) Stats(ctx context.Context) (catalog.Stats, error) {
	chars, err := s.Characters(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return catalog.ComputeStats(chars), nil
}

var (
	_ catalog.Source   = (*Store)(nil)
	_ catalog.Replacer = (*Store)(nil)
)
