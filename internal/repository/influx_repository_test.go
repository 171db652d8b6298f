package repository

import (
	"context"
	"testing"
	"time"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfluxLedger_RequiresClient(t *testing.T) {
	ledger := NewInfluxLedger(&config.InfluxDatabase{Database: "powerplant"})

	err := ledger.Record(context.Background(), "create", []domain.Battery{{ID: 1, Name: "A", Postcode: "1000"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is nil")
}

func TestBatteryToPoint(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	point := batteryToPoint("create", domain.Battery{ID: 7, Name: "Cannington", Postcode: "6107", Capacity: 13500}, ts)

	assert.NotNil(t, point)
}
