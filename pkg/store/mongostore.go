package store

import (
	"context"
	"fmt"
	"time"

	"paperradio/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoEpisode is the episode document shape in Mongo. pub_date is a
// native time so range queries work.
type mongoEpisode struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	AudioURL    string    `bson:"audio_url"`
	AudioSize   int64     `bson:"audio_size"`
	Duration    int       `bson:"duration"`
	PubDate     time.Time `bson:"pub_date"`
	Authors     []string  `bson:"authors"`
}

// MongoStore keeps episodes and the processed set in two collections.
type MongoStore struct {
	client    *mongo.Client
	episodes  *mongo.Collection
	processed *mongo.Collection
}

// NewMongoStore creates a store backed by the given database.
func NewMongoStore(connectionString, databaseName string) *MongoStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return store with nil - error will be caught during Connect()
		return &MongoStore{}
	}

	database := client.Database(databaseName)
	return &MongoStore{
		client:    client,
		episodes:  database.Collection("episodes"),
		processed: database.Collection("processed_papers"),
	}
}

// Connect verifies connectivity.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.client.Ping(ctx, nil)
}

// Close disconnects from Mongo.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// LoadEpisodes returns all episodes, pub dates normalized to UTC.
func (s *MongoStore) LoadEpisodes(ctx context.Context) ([]domain.Episode, error) {
	if s.episodes == nil {
		return nil, fmt.Errorf("episodes collection not initialized")
	}

	cursor, err := s.episodes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer cursor.Close(ctx)

	var episodes []domain.Episode
	for cursor.Next(ctx) {
		var doc mongoEpisode
		if err := cursor.Decode(&doc); err != nil {
			continue // Skip invalid documents
		}
		episodes = append(episodes, domain.Episode{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			AudioURL:    doc.AudioURL,
			AudioSize:   doc.AudioSize,
			Duration:    doc.Duration,
			PubDate:     doc.PubDate.UTC(),
			Authors:     doc.Authors,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return episodes, nil
}

// UpsertEpisode writes the episode keyed by ID.
func (s *MongoStore) UpsertEpisode(ctx context.Context, episode domain.Episode) error {
	if s.episodes == nil {
		return fmt.Errorf("episodes collection not initialized")
	}

	doc := mongoEpisode{
		ID:          episode.ID,
		Title:       episode.Title,
		Description: episode.Description,
		AudioURL:    episode.AudioURL,
		AudioSize:   episode.AudioSize,
		Duration:    episode.Duration,
		PubDate:     episode.PubDate.UTC(),
		Authors:     episode.Authors,
	}

	filter := bson.M{"_id": episode.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := s.episodes.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadProcessedIDs returns the processed paper IDs as a set.
func (s *MongoStore) LoadProcessedIDs(ctx context.Context) (map[string]bool, error) {
	if s.processed == nil {
		return nil, fmt.Errorf("processed collection not initialized")
	}

	cursor, err := s.processed.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query processed papers: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		if doc.ID != "" {
			ids[doc.ID] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

// MarkProcessed records a paper ID; duplicates are absorbed by the
// upsert.
func (s *MongoStore) MarkProcessed(ctx context.Context, paperID string) error {
	if s.processed == nil {
		return fmt.Errorf("processed collection not initialized")
	}

	filter := bson.M{"_id": paperID}
	update := bson.M{"$setOnInsert": bson.M{"marked_at": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)

	_, err := s.processed.UpdateOne(ctx, filter, update, opts)
	return err
}
