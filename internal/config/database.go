package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
	_ "github.com/mattn/go-sqlite3"
	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database is an open connection to one of the supported backends
type Database interface {
	Close() error
	GetType() string
}

// MemoryDatabase is a placeholder for the in-process store
type MemoryDatabase struct{}

// SQLiteDatabase wraps a database/sql handle on SQLite
type SQLiteDatabase struct {
	DB *sql.DB
}

// BoltDatabase wraps a bbolt file
type BoltDatabase struct {
	DB *bolt.DB
}

// MongoDatabase wraps MongoDB client
type MongoDatabase struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Collection *mongo.Collection
	Counters   *mongo.Collection

	// Transactions is set when the deployment is a replica set or mongos
	Transactions bool
}

// InfluxDatabase wraps InfluxDB v3 client
type InfluxDatabase struct {
	Client   *influxdb3.Client
	Database string
}

// InitDatabase creates appropriate database connection
func InitDatabase(ctx context.Context, cfg *Config) (Database, error) {
	switch cfg.StoreType {
	case StoreMemory:
		return &MemoryDatabase{}, nil
	case StoreSQLite:
		return initSQLite(cfg.SQLitePath)
	case StoreBolt:
		return initBolt(cfg.BoltPath)
	case StoreMongo:
		return initMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}
}

func (m *MemoryDatabase) Close() error { return nil }

func (m *MemoryDatabase) GetType() string { return StoreMemory }

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS batteries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	postcode TEXT NOT NULL,
	capacity INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_batteries_postcode ON batteries(postcode);
`

func initSQLite(path string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection keeps conditional inserts atomic
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteDatabase{DB: db}, nil
}

func (s *SQLiteDatabase) Close() error {
	return s.DB.Close()
}

func (s *SQLiteDatabase) GetType() string { return StoreSQLite }

// Bolt bucket names
var (
	BucketBatteries = []byte("batteries")
	BucketPostcodes = []byte("postcodes")
)

func initBolt(path string) (*BoltDatabase, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{BucketBatteries, BucketPostcodes} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltDatabase{DB: db}, nil
}

func (b *BoltDatabase) Close() error {
	return b.DB.Close()
}

func (b *BoltDatabase) GetType() string { return StoreBolt }

// MongoDB initialization
func initMongo(ctx context.Context, cfg *Config) (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(50).
		SetMinPoolSize(5)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	database := client.Database(cfg.MongoDB)
	collection := database.Collection(cfg.MongoCollection)

	if err := createMongoIndexes(ctx, collection); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	var hello helloReply
	if err := database.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo hello failed: %w", err)
	}

	return &MongoDatabase{
		Client:       client,
		Database:     database,
		Collection:   collection,
		Counters:     database.Collection("counters"),
		Transactions: hello.supportsTransactions(),
	}, nil
}

type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

func (h helloReply) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// The postcode index is not unique: bulk inserts are allowed to repeat postcodes
func createMongoIndexes(ctx context.Context, col *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "postcode", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *MongoDatabase) Close() error {
	if m.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return m.Client.Disconnect(ctx)
	}
	return nil
}

func (m *MongoDatabase) GetType() string { return StoreMongo }

// InitInflux connects the capacity ledger database
func InitInflux(cfg *Config) (*InfluxDatabase, error) {
	if cfg.InfluxURL == "" {
		return nil, fmt.Errorf("INFLUXDB_URL is required")
	}
	if cfg.InfluxDatabase == "" {
		return nil, fmt.Errorf("INFLUXDB_DATABASE is required")
	}

	clientConfig := influxdb3.ClientConfig{
		Host:     cfg.InfluxURL,
		Database: cfg.InfluxDatabase,
		WriteOptions: &influxdb3.WriteOptions{
			DefaultTags: map[string]string{
				"source": "powerplant",
			},
		},
	}

	// InfluxDB v3 Core may run without auth
	if cfg.InfluxToken != "" {
		clientConfig.Token = cfg.InfluxToken
	}

	client, err := influxdb3.New(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("influx client creation failed: %w", err)
	}

	return &InfluxDatabase{
		Client:   client,
		Database: cfg.InfluxDatabase,
	}, nil
}

func (i *InfluxDatabase) Close() error {
	if i.Client != nil {
		i.Client.Close()
	}
	return nil
}

func (i *InfluxDatabase) GetType() string { return "influx" }

// MaskToken hides all but the edges of a secret for logging
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
