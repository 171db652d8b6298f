package service

import (
	"context"
	"errors"
	"fmt"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"
	"powerplant_project/internal/repository"
	"powerplant_project/pkg/logger"
)

// Ledger events
const (
	EventCreate = "create"
	EventUpdate = "update"
)

// CapacityLedger receives every successful battery write
type CapacityLedger interface {
	Record(ctx context.Context, event string, batteries []domain.Battery) error
}

// Service handles battery business rules on top of a BatteryStore
type Service struct {
	store                 repository.BatteryStore
	ledger                CapacityLedger
	enforceBulkUniqueness bool
}

// NewService creates the battery service; ledger may be nil
func NewService(store repository.BatteryStore, cfg *config.Config, ledger CapacityLedger) *Service {
	svc := &Service{
		store:  store,
		ledger: ledger,
	}
	if cfg != nil {
		svc.enforceBulkUniqueness = cfg.EnforceBulkUniqueness
	}

	logger.Infof("Service initialized (store: %s, ledger: %t, bulk uniqueness: %t)",
		store.Type(), ledger != nil, svc.enforceBulkUniqueness)
	return svc
}

// StoreType reports which backend the service writes to
func (svc *Service) StoreType() string {
	return svc.store.Type()
}

// CreateBattery stores a battery whose postcode is not yet registered.
// The store rejects the duplicate in its write path; there is no separate
// read-then-write check here.
func (svc *Service) CreateBattery(ctx context.Context, battery domain.Battery) (*domain.Battery, error) {
	battery.ID = 0
	logger.Infof("Saving battery with post code: %s", battery.Postcode)

	if err := svc.store.Insert(ctx, &battery); err != nil {
		if errors.Is(err, repository.ErrDuplicatePostcode) {
			return nil, &domain.ConflictError{Postcode: battery.Postcode}
		}
		return nil, fmt.Errorf("create battery: %w", err)
	}

	svc.record(ctx, EventCreate, []domain.Battery{battery})
	return &battery, nil
}

// CreateBatteries stores the whole list as one unit. Postcodes are only
// checked when bulk uniqueness is enabled.
func (svc *Service) CreateBatteries(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error) {
	input := make([]domain.Battery, len(batteries))
	for i, b := range batteries {
		b.ID = 0
		input[i] = b
	}

	if svc.enforceBulkUniqueness {
		if err := svc.checkBulkPostcodes(ctx, input); err != nil {
			return nil, err
		}
	}

	saved, err := svc.store.InsertMany(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create batteries: %w", err)
	}

	logger.Infof("Saved %d batteries", len(saved))
	svc.record(ctx, EventCreate, saved)
	return saved, nil
}

func (svc *Service) checkBulkPostcodes(ctx context.Context, batteries []domain.Battery) error {
	seen := make(map[string]struct{}, len(batteries))
	for _, b := range batteries {
		if _, dup := seen[b.Postcode]; dup {
			return &domain.ConflictError{Postcode: b.Postcode}
		}
		seen[b.Postcode] = struct{}{}

		_, found, err := svc.store.FindByPostcode(ctx, b.Postcode)
		if err != nil {
			return fmt.Errorf("check postcode %s: %w", b.Postcode, err)
		}
		if found {
			return &domain.ConflictError{Postcode: b.Postcode}
		}
	}
	return nil
}

// ListBatteries returns all batteries in store order
func (svc *Service) ListBatteries(ctx context.Context) ([]domain.Battery, error) {
	batteries, err := svc.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batteries: %w", err)
	}
	return batteries, nil
}

// GetBattery returns a NotFoundError carrying the id when absent
func (svc *Service) GetBattery(ctx context.Context, id int64) (*domain.Battery, error) {
	battery, err := svc.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.BatteryNotFound(id)
		}
		return nil, fmt.Errorf("get battery %d: %w", id, err)
	}
	return battery, nil
}

// UpdateBattery replaces name, postcode and capacity and keeps the id
func (svc *Service) UpdateBattery(ctx context.Context, id int64, battery domain.Battery) (*domain.Battery, error) {
	battery.ID = id

	if err := svc.store.Update(ctx, &battery); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.BatteryNotFound(id)
		case errors.Is(err, repository.ErrDuplicatePostcode):
			return nil, &domain.ConflictError{Postcode: battery.Postcode}
		default:
			return nil, fmt.Errorf("update battery %d: %w", id, err)
		}
	}

	logger.Infof("Updated battery %d (post code: %s)", id, battery.Postcode)
	svc.record(ctx, EventUpdate, []domain.Battery{battery})
	return &battery, nil
}

// GetBatteriesInPostcodeRange loads every battery and aggregates the range
func (svc *Service) GetBatteriesInPostcodeRange(ctx context.Context, req domain.RangeRequest) (*domain.RangeReport, error) {
	batteries, err := svc.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load batteries for range: %w", err)
	}

	report := ComputeRangeReport(batteries, req.StartPostcode, req.EndPostcode)
	logger.Debugf("Range [%s, %s]: %d of %d batteries, total %d W",
		req.StartPostcode, req.EndPostcode, len(report.BatteriesInRange), len(batteries), report.TotalWattCapacity)
	return &report, nil
}

// record feeds the ledger; failures never fail the caller
func (svc *Service) record(ctx context.Context, event string, batteries []domain.Battery) {
	if svc.ledger == nil {
		return
	}
	if err := svc.ledger.Record(ctx, event, batteries); err != nil {
		logger.Warnf("Capacity ledger write failed (%s, %d batteries): %v", event, len(batteries), err)
	}
}
