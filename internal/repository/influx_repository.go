package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

const capacityMeasurement = "battery_capacity"

// InfluxLedger appends a capacity point for every battery write so capacity
// over time can be charted outside the service
type InfluxLedger struct {
	db *config.InfluxDatabase
}

// NewInfluxLedger creates a new InfluxDB capacity ledger
func NewInfluxLedger(db *config.InfluxDatabase) *InfluxLedger {
	return &InfluxLedger{db: db}
}

// Record writes one point per battery tagged with the write event
func (r *InfluxLedger) Record(ctx context.Context, event string, batteries []domain.Battery) error {
	if r.db == nil || r.db.Client == nil {
		return fmt.Errorf("InfluxDB client is nil - database not initialized")
	}
	if len(batteries) == 0 {
		return nil
	}

	now := time.Now()
	points := make([]*influxdb3.Point, 0, len(batteries))
	for _, b := range batteries {
		points = append(points, batteryToPoint(event, b, now))
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r.db.Client.WritePoints(ctx, points); err != nil {
		return fmt.Errorf("WritePoints failed: %w (points: %d, db: %s)", err, len(points), r.db.Database)
	}
	return nil
}

// batteryToPoint converts a battery write into an InfluxDB point
func batteryToPoint(event string, b domain.Battery, ts time.Time) *influxdb3.Point {
	tags := map[string]string{
		"event":      event,
		"postcode":   b.Postcode,
		"battery_id": strconv.FormatInt(b.ID, 10),
	}

	fields := map[string]interface{}{
		"name":     b.Name,
		"capacity": int64(b.Capacity),
	}

	return influxdb3.NewPoint(capacityMeasurement, tags, fields, ts)
}
