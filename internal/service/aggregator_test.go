package service

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"powerplant_project/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatteries() []domain.Battery {
	return []domain.Battery{
		{ID: 1, Name: "Cannington", Postcode: "6107", Capacity: 13500},
		{ID: 2, Name: "Midland", Postcode: "6057", Capacity: 50500},
		{ID: 3, Name: "Koolan Island", Postcode: "6733", Capacity: 10000},
	}
}

func TestComputeRangeReport(t *testing.T) {
	tests := []struct {
		name      string
		batteries []domain.Battery
		start     string
		end       string
		wantNames []string
		wantTotal int
		wantAvg   float64
	}{
		{
			name:      "Range Sorted By Name",
			batteries: sampleBatteries(),
			start:     "6050",
			end:       "6200",
			wantNames: []string{"Cannington", "Midland"},
			wantTotal: 64000,
			wantAvg:   32000.0,
		},
		{
			name:      "Empty Input",
			batteries: nil,
			start:     "0000",
			end:       "9999",
			wantNames: []string{},
			wantTotal: 0,
			wantAvg:   0.0,
		},
		{
			name:      "Start After End",
			batteries: sampleBatteries(),
			start:     "9999",
			end:       "0000",
			wantNames: []string{},
			wantTotal: 0,
			wantAvg:   0.0,
		},
		{
			name:      "Bounds Inclusive",
			batteries: sampleBatteries(),
			start:     "6057",
			end:       "6733",
			wantNames: []string{"Cannington", "Koolan Island", "Midland"},
			wantTotal: 74000,
			wantAvg:   74000.0 / 3,
		},
		{
			name: "Lexicographic Not Numeric",
			batteries: []domain.Battery{
				{Name: "Short", Postcode: "620", Capacity: 100},
				{Name: "Long", Postcode: "60000", Capacity: 300},
			},
			start:     "6050",
			end:       "6200",
			wantNames: []string{"Short"},
			wantTotal: 100,
			wantAvg:   100.0,
		},
		{
			name: "Negative And Zero Capacity",
			batteries: []domain.Battery{
				{Name: "A", Postcode: "1000", Capacity: -50},
				{Name: "B", Postcode: "1001", Capacity: 0},
			},
			start:     "1000",
			end:       "1001",
			wantNames: []string{"A", "B"},
			wantTotal: -50,
			wantAvg:   -25.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ComputeRangeReport(tt.batteries, tt.start, tt.end)

			names := make([]string, 0, len(report.BatteriesInRange))
			for _, b := range report.BatteriesInRange {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, report.TotalWattCapacity)
			assert.InDelta(t, tt.wantAvg, report.AverageWattCapacity, 1e-9)
			assert.NotNil(t, report.BatteriesInRange)
		})
	}
}

func TestComputeRangeReport_AverageMatchesOriginal(t *testing.T) {
	batteries := []domain.Battery{
		{Name: "Cannington", Postcode: "6107", Capacity: 13500},
		{Name: "Midland", Postcode: "6057", Capacity: 50500},
		{Name: "Hay Street", Postcode: "6000", Capacity: 12000},
	}

	report := ComputeRangeReport(batteries, "6000", "6200")
	assert.Equal(t, 76000, report.TotalWattCapacity)
	assert.Equal(t, 25333.333333333332, report.AverageWattCapacity)
}

func TestComputeRangeReport_StableForEqualNames(t *testing.T) {
	batteries := []domain.Battery{
		{ID: 10, Name: "Same", Postcode: "2000", Capacity: 1},
		{ID: 11, Name: "Alpha", Postcode: "2001", Capacity: 1},
		{ID: 12, Name: "Same", Postcode: "2002", Capacity: 1},
		{ID: 13, Name: "Same", Postcode: "2003", Capacity: 1},
	}

	report := ComputeRangeReport(batteries, "2000", "2999")
	require.Len(t, report.BatteriesInRange, 4)

	ids := []int64{}
	for _, b := range report.BatteriesInRange {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{11, 10, 12, 13}, ids)
}

func TestComputeRangeReport_DoesNotModifyInput(t *testing.T) {
	batteries := sampleBatteries()
	before := append([]domain.Battery(nil), batteries...)

	first := ComputeRangeReport(batteries, "6000", "7000")
	second := ComputeRangeReport(batteries, "6000", "7000")

	assert.Equal(t, before, batteries)
	assert.Equal(t, first, second)
}

func randomPostcode(r *rand.Rand) string {
	n := 3 + r.Intn(3)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + r.Intn(10))
	}
	return string(b)
}

// TestComputeRangeReport_Properties checks soundness, completeness, ordering
// and the aggregates on random inputs
func TestComputeRangeReport_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		batteries := make([]domain.Battery, r.Intn(40))
		for i := range batteries {
			batteries[i] = domain.Battery{
				ID:       int64(i + 1),
				Name:     fmt.Sprintf("site-%c", 'a'+r.Intn(8)),
				Postcode: randomPostcode(r),
				Capacity: r.Intn(20000) - 1000,
			}
		}
		start, end := randomPostcode(r), randomPostcode(r)

		report := ComputeRangeReport(batteries, start, end)

		inReport := make(map[int64]bool)
		total := 0
		for _, b := range report.BatteriesInRange {
			require.True(t, start <= b.Postcode && b.Postcode <= end, "unsound: %s not in [%s, %s]", b.Postcode, start, end)
			inReport[b.ID] = true
			total += b.Capacity
		}
		for _, b := range batteries {
			if start <= b.Postcode && b.Postcode <= end {
				require.True(t, inReport[b.ID], "incomplete: %s missing from [%s, %s]", b.Postcode, start, end)
			}
		}

		require.True(t, sort.SliceIsSorted(report.BatteriesInRange, func(i, j int) bool {
			return report.BatteriesInRange[i].Name < report.BatteriesInRange[j].Name
		}))
		for i := 1; i < len(report.BatteriesInRange); i++ {
			prev, cur := report.BatteriesInRange[i-1], report.BatteriesInRange[i]
			if prev.Name == cur.Name {
				require.Less(t, prev.ID, cur.ID, "equal names must keep input order")
			}
		}

		require.Equal(t, total, report.TotalWattCapacity)
		if len(report.BatteriesInRange) == 0 {
			require.Equal(t, 0.0, report.AverageWattCapacity)
		} else {
			require.Equal(t, float64(total)/float64(len(report.BatteriesInRange)), report.AverageWattCapacity)
		}
	}
}

func BenchmarkComputeRangeReport(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	batteries := make([]domain.Battery, 10000)
	for i := range batteries {
		batteries[i] = domain.Battery{
			ID:       int64(i + 1),
			Name:     fmt.Sprintf("site-%05d", r.Intn(100000)),
			Postcode: randomPostcode(r),
			Capacity: r.Intn(50000),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeRangeReport(batteries, "3000", "6999")
	}
}
