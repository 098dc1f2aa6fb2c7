package domain

import "time"

type TrainType string

const (
	TrainTypeHighSpeed TrainType = "高速"
	TrainTypeExpress   TrainType = "特快"
	TrainTypeRegular   TrainType = "普速"
	TrainTypeFreight   TrainType = "货运"
)

type Train struct {
	ID int64 `json:"id"`
	// TrainNumber 是车次号，例如 G1001
	TrainNumber          string    `json:"trainNumber"`
	Name                 string    `json:"name"`
	Type                 TrainType `json:"type"`
	Capacity             int32     `json:"capacity"`
	MaxSpeed             int32     `json:"maxSpeed"`
	FuelEfficiency       float64   `json:"fuelEfficiency"`
	MaintenanceCostPerKm float64   `json:"maintenanceCostPerKm"`
	IsOperational        bool      `json:"isOperational"`
	CreatedAt            time.Time `json:"createdAt"`
	Version              int32     `json:"-"`
}
