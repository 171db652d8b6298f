package repository

import (
	"context"
	"errors"
	"fmt"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"
	"powerplant_project/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batteryCounter = "batteries"

// MongoStore implements BatteryStore for MongoDB
type MongoStore struct {
	db *config.MongoDatabase
}

// NewMongoStore creates a new MongoDB store
func NewMongoStore(db *config.MongoDatabase) *MongoStore {
	return &MongoStore{db: db}
}

// reserveIDs atomically reserves n consecutive ids and returns the first one
func (r *MongoStore) reserveIDs(ctx context.Context, n int) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Counters.FindOneAndUpdate(ctx,
		bson.M{"_id": batteryCounter},
		bson.M{"$inc": bson.M{"seq": int64(n)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("reserve ids: %w", err)
	}
	return counter.Seq - int64(n) + 1, nil
}

// Insert upserts on postcode with $setOnInsert so an existing postcode
// matches instead of inserting
func (r *MongoStore) Insert(ctx context.Context, battery *domain.Battery) error {
	id, err := r.reserveIDs(ctx, 1)
	if err != nil {
		return err
	}

	result, err := r.db.Collection.UpdateOne(ctx,
		bson.M{"postcode": battery.Postcode},
		bson.M{"$setOnInsert": bson.M{
			"_id":      id,
			"name":     battery.Name,
			"capacity": battery.Capacity,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("insert battery failed: %w", err)
	}
	if result.MatchedCount > 0 {
		return ErrDuplicatePostcode
	}

	battery.ID = id
	return nil
}

// InsertMany writes the batch in one transaction on replica sets and sharded
// clusters. A standalone server has no transactions, so the ordered insert
// there stops at the first bad document and may leave a prefix written.
func (r *MongoStore) InsertMany(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error) {
	if len(batteries) == 0 {
		return []domain.Battery{}, nil
	}

	first, err := r.reserveIDs(ctx, len(batteries))
	if err != nil {
		return nil, err
	}

	saved := make([]domain.Battery, len(batteries))
	docs := make([]interface{}, len(batteries))
	for i, b := range batteries {
		b.ID = first + int64(i)
		saved[i] = b
		docs[i] = b
	}

	if !r.db.Transactions {
		if err := r.insertOrdered(ctx, docs); err != nil {
			return nil, err
		}
		return saved, nil
	}

	session, err := r.db.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session failed: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.insertOrdered(sc, docs)
	})
	if err != nil {
		return nil, fmt.Errorf("batch transaction failed: %w", err)
	}
	return saved, nil
}

func (r *MongoStore) insertOrdered(ctx context.Context, docs []interface{}) error {
	result, err := r.db.Collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if result != nil {
			inserted = len(result.InsertedIDs)
		}
		logger.Errorf("MongoDB InsertMany failed: %v (inserted: %d/%d)", err, inserted, len(docs))
		return fmt.Errorf("batch insert failed: %w", err)
	}

	logger.Debugf("Inserted %d batteries", len(result.InsertedIDs))
	return nil
}

func (r *MongoStore) FindAll(ctx context.Context) ([]domain.Battery, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.db.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer cursor.Close(ctx)

	batteries := make([]domain.Battery, 0)
	if err := cursor.All(ctx, &batteries); err != nil {
		return nil, fmt.Errorf("cursor decode failed: %w", err)
	}
	return batteries, nil
}

func (r *MongoStore) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	var b domain.Battery
	err := r.db.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find battery failed: %w", err)
	}
	return &b, nil
}

func (r *MongoStore) FindByPostcode(ctx context.Context, postcode string) (*domain.Battery, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	var b domain.Battery
	err := r.db.Collection.FindOne(ctx, bson.M{"postcode": postcode}, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find battery by postcode failed: %w", err)
	}
	return &b, true, nil
}

// Update only checks postcode ownership when the postcode changes; bulk
// inserts may have left several records sharing the current one
func (r *MongoStore) Update(ctx context.Context, battery *domain.Battery) error {
	current, err := r.FindByID(ctx, battery.ID)
	if err != nil {
		return err
	}

	if current.Postcode != battery.Postcode {
		taken, err := r.db.Collection.CountDocuments(ctx, bson.M{
			"postcode": battery.Postcode,
			"_id":      bson.M{"$ne": battery.ID},
		})
		if err != nil {
			return fmt.Errorf("check postcode failed: %w", err)
		}
		if taken > 0 {
			return ErrDuplicatePostcode
		}
	}

	result, err := r.db.Collection.UpdateOne(ctx,
		bson.M{"_id": battery.ID},
		bson.M{"$set": bson.M{
			"name":     battery.Name,
			"postcode": battery.Postcode,
			"capacity": battery.Capacity,
		}},
	)
	if err != nil {
		return fmt.Errorf("update battery failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Type returns database type
func (r *MongoStore) Type() string {
	return "mongo"
}
