package domain

import "time"

type Schedule struct {
	ID            int64     `json:"id"`
	TrainID       int64     `json:"trainID"`
	RouteID       int64     `json:"routeID"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	PassengerLoad int32     `json:"passengerLoad"`
	IsCancelled   bool      `json:"isCancelled"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
