package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func ValidateScheduleTime(schedule *domain.Schedule) error {
	if !schedule.ArrivalTime.After(schedule.DepartureTime) {
		return fmt.Errorf("到达时间必须晚于出发时间")
	}
	return nil
}

func ValidateScheduleLoad(schedule *domain.Schedule, train *domain.Train) error {
	if schedule.PassengerLoad > train.Capacity {
		return fmt.Errorf("载客量 %d 超过了列车定员 %d", schedule.PassengerLoad, train.Capacity)
	}
	return nil
}
