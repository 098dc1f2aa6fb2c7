package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
)

// SeedRealData 插入一批贴近真实运营情况的列车、线路和时刻表，
// 以及最近一周的性能指标，方便在新环境中直接体验优化功能
func SeedRealData(r *repository.Repository) {
	trains := []*domain.Train{
		{TrainNumber: "G1", Name: "复兴号", Type: domain.TrainTypeHighSpeed, Capacity: 1193, MaxSpeed: 350, FuelEfficiency: 13.5, MaintenanceCostPerKm: 2.6, IsOperational: true},
		{TrainNumber: "G3", Name: "复兴号", Type: domain.TrainTypeHighSpeed, Capacity: 1193, MaxSpeed: 350, FuelEfficiency: 13.2, MaintenanceCostPerKm: 2.6, IsOperational: true},
		{TrainNumber: "G79", Name: "和谐号", Type: domain.TrainTypeHighSpeed, Capacity: 1005, MaxSpeed: 310, FuelEfficiency: 12.1, MaintenanceCostPerKm: 2.2, IsOperational: true},
		{TrainNumber: "G99", Name: "和谐号", Type: domain.TrainTypeHighSpeed, Capacity: 1005, MaxSpeed: 310, FuelEfficiency: 11.8, MaintenanceCostPerKm: 2.3, IsOperational: true},
		{TrainNumber: "T109", Name: "东风号", Type: domain.TrainTypeExpress, Capacity: 1102, MaxSpeed: 160, FuelEfficiency: 9.4, MaintenanceCostPerKm: 1.6, IsOperational: true},
		{TrainNumber: "T179", Name: "韶山号", Type: domain.TrainTypeExpress, Capacity: 1050, MaxSpeed: 150, FuelEfficiency: 9.0, MaintenanceCostPerKm: 1.5, IsOperational: true},
		{TrainNumber: "K511", Name: "东风号", Type: domain.TrainTypeRegular, Capacity: 1820, MaxSpeed: 110, FuelEfficiency: 7.8, MaintenanceCostPerKm: 1.1, IsOperational: true},
		{TrainNumber: "K4051", Name: "韶山号", Type: domain.TrainTypeRegular, Capacity: 1950, MaxSpeed: 100, FuelEfficiency: 7.2, MaintenanceCostPerKm: 1.0, IsOperational: false},
		{TrainNumber: "X8001", Name: "神州号", Type: domain.TrainTypeFreight, Capacity: 480, MaxSpeed: 95, FuelEfficiency: 6.5, MaintenanceCostPerKm: 0.9, IsOperational: true},
	}

	for _, train := range trains {
		if err := r.CreateTrain(train); err != nil {
			slog.Error("插入列车失败", "trainNumber", train.TrainNumber, "error", err)
		}
	}

	routes := []*domain.Route{
		{Name: "京沪高铁", StartStation: "北京南", EndStation: "上海虹桥", Distance: 1318, EstimatedTravelTime: 270, IsActive: true},
		{Name: "京广高铁", StartStation: "北京西", EndStation: "广州南", Distance: 2298, EstimatedTravelTime: 480, IsActive: true},
		{Name: "沪昆高铁", StartStation: "上海虹桥", EndStation: "昆明南", Distance: 2252, EstimatedTravelTime: 660, IsActive: true},
		{Name: "广深港高铁", StartStation: "广州南", EndStation: "深圳北", Distance: 102, EstimatedTravelTime: 36, IsActive: true},
		{Name: "成渝高铁", StartStation: "成都东", EndStation: "重庆北", Distance: 308, EstimatedTravelTime: 90, IsActive: true},
		{Name: "郑西高铁", StartStation: "郑州东", EndStation: "西安北", Distance: 523, EstimatedTravelTime: 120, IsActive: true},
		{Name: "杭深线", StartStation: "杭州东", EndStation: "福州", Distance: 574, EstimatedTravelTime: 200, IsActive: true},
		{Name: "陇海线", StartStation: "兰州西", EndStation: "郑州东", Distance: 1083, EstimatedTravelTime: 420, IsActive: false},
	}

	for _, route := range routes {
		if err := r.CreateRoute(route); err != nil {
			slog.Error("插入线路失败", "name", route.Name, "error", err)
		}
	}

	// 为主要线路安排未来三天的车次，高速线路配高速列车
	pairings := []struct {
		train *domain.Train
		route *domain.Route
		hours []int
	}{
		{trains[0], routes[0], []int{7, 15}},
		{trains[1], routes[1], []int{8}},
		{trains[2], routes[3], []int{9, 13, 18}},
		{trains[3], routes[4], []int{10, 16}},
		{trains[4], routes[2], []int{11}},
		{trains[5], routes[6], []int{8}},
		{trains[6], routes[5], []int{14}},
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	scheduleCount := 0
	for day := 1; day <= 3; day++ {
		for _, pairing := range pairings {
			if pairing.train.ID == 0 || pairing.route.ID == 0 {
				// 对应的列车或线路没有插入成功
				continue
			}

			for _, hour := range pairing.hours {
				departure := midnight.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
				schedule := &domain.Schedule{
					TrainID:       pairing.train.ID,
					RouteID:       pairing.route.ID,
					DepartureTime: departure,
					ArrivalTime:   departure.Add(time.Duration(pairing.route.EstimatedTravelTime) * time.Minute),
					PassengerLoad: int32(float64(pairing.train.Capacity) * (0.5 + rand.Float64()*0.45)),
				}

				if err := r.CreateSchedule(schedule); err != nil {
					slog.Error("插入时刻表失败", "trainNumber", pairing.train.TrainNumber, "error", err)
					continue
				}
				scheduleCount++
			}
		}
	}

	// 补一周的历史性能指标，让仪表盘和趋势图在新环境中不至于空白
	metricCount := 0
	for day := 0; day < 7; day++ {
		measuredAt := now.AddDate(0, 0, -day)

		for _, train := range trains {
			if train.ID == 0 || !train.IsOperational {
				continue
			}

			metrics := []*domain.PerformanceMetric{
				{Type: domain.MetricTypeFuelConsumption, Value: 8 + rand.Float64()*7, Unit: "km/liter", TrainID: &train.ID, MeasuredAt: measuredAt},
				{Type: domain.MetricTypeOnTimePerformance, Value: 85 + rand.Float64()*13, Unit: "percentage", TrainID: &train.ID, MeasuredAt: measuredAt},
			}
			for _, metric := range metrics {
				if err := r.CreatePerformanceMetric(metric); err != nil {
					slog.Error("插入性能指标失败", "error", err)
					continue
				}
				metricCount++
			}
		}

		for _, route := range routes {
			if route.ID == 0 || !route.IsActive {
				continue
			}

			metric := &domain.PerformanceMetric{
				Type:       domain.MetricTypeRouteUtilization,
				Value:      60 + rand.Float64()*30,
				Unit:       "percentage",
				RouteID:    &route.ID,
				MeasuredAt: measuredAt,
			}
			if err := r.CreatePerformanceMetric(metric); err != nil {
				slog.Error("插入性能指标失败", "error", err)
				continue
			}
			metricCount++
		}
	}

	slog.Info("插入数据完成", "schedules", scheduleCount, "metrics", metricCount)
}
