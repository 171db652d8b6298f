package repository

import (
	"context"
	"errors"
	"fmt"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"
)

var (
	// ErrNotFound is returned when no battery has the requested id
	ErrNotFound = errors.New("battery not found")
	// ErrDuplicatePostcode is returned when a conditional write hits an existing postcode
	ErrDuplicatePostcode = errors.New("postcode already registered")
)

// BatteryStore defines data access for battery records
type BatteryStore interface {
	// Insert assigns an id and stores the battery unless its postcode is taken
	Insert(ctx context.Context, battery *domain.Battery) error

	// InsertMany stores all batteries as one unit without postcode checks
	InsertMany(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error)

	// FindAll returns every battery in ascending id order
	FindAll(ctx context.Context) ([]domain.Battery, error)

	// FindByID returns ErrNotFound when absent
	FindByID(ctx context.Context, id int64) (*domain.Battery, error)

	// FindByPostcode reports absence with found == false, not an error
	FindByPostcode(ctx context.Context, postcode string) (battery *domain.Battery, found bool, err error)

	// Update replaces name, postcode and capacity of an existing battery
	Update(ctx context.Context, battery *domain.Battery) error

	// Type returns database type
	Type() string
}

// NewStore picks the store implementation for an open database
func NewStore(db config.Database) (BatteryStore, error) {
	switch d := db.(type) {
	case *config.MemoryDatabase:
		return NewMemoryStore(), nil
	case *config.SQLiteDatabase:
		return NewSQLiteStore(d), nil
	case *config.BoltDatabase:
		return NewBoltStore(d), nil
	case *config.MongoDatabase:
		return NewMongoStore(d), nil
	default:
		return nil, fmt.Errorf("no battery store for database type %q", db.GetType())
	}
}
