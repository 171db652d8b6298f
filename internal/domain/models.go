package domain

// Battery represents one battery installation
type Battery struct {
	ID       int64  `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name" binding:"notblank"`
	Postcode string `json:"postcode" bson:"postcode" binding:"notblank"`
	Capacity int    `json:"capacity" bson:"capacity"` // Watts
}

// RangeRequest is the closed postcode interval [StartPostcode, EndPostcode]
type RangeRequest struct {
	StartPostcode string `json:"startPostcode" binding:"notblank"`
	EndPostcode   string `json:"endPostcode" binding:"notblank"`
}

// RangeReport holds the batteries inside a postcode range plus capacity statistics
type RangeReport struct {
	BatteriesInRange    []Battery `json:"batteriesInRange"`
	TotalWattCapacity   int       `json:"totalWattCapacity"`
	AverageWattCapacity float64   `json:"averageWattCapacity"`
}

// Health is returned by the health endpoint
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
