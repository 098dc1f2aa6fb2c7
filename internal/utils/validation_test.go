package utils

import (
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func TestValidateScheduleTime(t *testing.T) {
	departure := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)

	scenarios := []struct {
		name        string
		arrival     time.Time
		expectError bool
	}{
		{name: "到达晚于出发", arrival: departure.Add(2 * time.Hour), expectError: false},
		{name: "到达早于出发", arrival: departure.Add(-time.Hour), expectError: true},
		{name: "到达等于出发", arrival: departure, expectError: true},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			schedule := &domain.Schedule{
				DepartureTime: departure,
				ArrivalTime:   scenario.arrival,
			}

			err := ValidateScheduleTime(schedule)
			if scenario.expectError && err == nil {
				t.Errorf("期望返回错误，实际没有")
			}
			if !scenario.expectError && err != nil {
				t.Errorf("不应该返回错误: %v", err)
			}
		})
	}
}

func TestValidateScheduleLoad(t *testing.T) {
	train := &domain.Train{Capacity: 1000}

	scenarios := []struct {
		name        string
		load        int32
		expectError bool
	}{
		{name: "载客量为零", load: 0, expectError: false},
		{name: "载客量等于定员", load: 1000, expectError: false},
		{name: "载客量超过定员", load: 1001, expectError: true},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			schedule := &domain.Schedule{PassengerLoad: scenario.load}

			err := ValidateScheduleLoad(schedule, train)
			if scenario.expectError && err == nil {
				t.Errorf("期望返回错误，实际没有")
			}
			if !scenario.expectError && err != nil {
				t.Errorf("不应该返回错误: %v", err)
			}
		})
	}
}
