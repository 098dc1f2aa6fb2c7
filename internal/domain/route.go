package domain

import "time"

type Route struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	StartStation string  `json:"startStation"`
	EndStation   string  `json:"endStation"`
	// Distance 的单位是公里
	Distance float64 `json:"distance"`
	// EstimatedTravelTime 的单位是分钟
	EstimatedTravelTime int32     `json:"estimatedTravelTime"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	Version             int32     `json:"-"`
}
