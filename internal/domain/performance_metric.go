package domain

import "time"

type MetricType string

const (
	MetricTypeFuelConsumption       MetricType = "fuel_consumption"
	MetricTypeOnTimePerformance     MetricType = "on_time_performance"
	MetricTypePassengerSatisfaction MetricType = "passenger_satisfaction"
	MetricTypeCostEfficiency        MetricType = "cost_efficiency"
	MetricTypeRouteUtilization      MetricType = "route_utilization"
)

// MetricTypes 包含所有合法的指标类型
var MetricTypes = []MetricType{
	MetricTypeFuelConsumption,
	MetricTypeOnTimePerformance,
	MetricTypePassengerSatisfaction,
	MetricTypeCostEfficiency,
	MetricTypeRouteUtilization,
}

type PerformanceMetric struct {
	ID         int64      `json:"id"`
	Type       MetricType `json:"type"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit"`
	TrainID    *int64     `json:"trainID,omitempty"`
	RouteID    *int64     `json:"routeID,omitempty"`
	ScheduleID *int64     `json:"scheduleID,omitempty"`
	MeasuredAt time.Time  `json:"measuredAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// RoutePerformance 是某条线路在一段时间内的表现汇总
type RoutePerformance struct {
	AverageFuelConsumption float64 `json:"averageFuelConsumption"`
	OnTimePercentage       float64 `json:"onTimePercentage"`
	TotalMeasurements      int64   `json:"totalMeasurements"`
	PeriodDays             int32   `json:"periodDays"`
}

// DashboardMetrics 是系统总览页所需要的汇总数据
type DashboardMetrics struct {
	TotalTrains                int64   `json:"totalTrains"`
	ActiveRoutes               int64   `json:"activeRoutes"`
	ScheduledTrips             int64   `json:"scheduledTrips"`
	AvgFuelEfficiency          float64 `json:"avgFuelEfficiency"`
	OnTimePerformance          float64 `json:"onTimePerformance"`
	TotalPassengers            int64   `json:"totalPassengers"`
	CostSavings                float64 `json:"costSavings"`
	OptimizationTasksCompleted int64   `json:"optimizationTasksCompleted"`
}

// MetricTrendPoint 是趋势曲线上的一个点，按天聚合
type MetricTrendPoint struct {
	Date         string  `json:"date"`
	AverageValue float64 `json:"averageValue"`
	Count        int64   `json:"count"`
}

type MetricTrends struct {
	MetricType MetricType         `json:"metricType"`
	PeriodDays int32              `json:"periodDays"`
	Trends     []MetricTrendPoint `json:"trends"`
}

// MetricSummary 是某种指标类型的统计信息
type MetricSummary struct {
	Average float64 `json:"average"`
	Maximum float64 `json:"maximum"`
	Minimum float64 `json:"minimum"`
	Count   int64   `json:"count"`
}
