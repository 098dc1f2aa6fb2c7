package optimizer

import "time"

// Trip: 表示时刻表中的一次列车出行
type Trip struct {
	trainID       int64
	routeID       int64
	departureTime time.Time
	arrivalTime   time.Time
	passengerLoad int32
}

// individual: 一张完整的候选时刻表
type individual struct {
	trips []Trip
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32      // 种群大小
	MaxGenerations int32      // 最大迭代次数
	CrossoverRate  float64    // 交叉概率
	MutationRate   float64    // 变异概率
	TimeHorizon    int32      // 调度时间窗（小时）
	Weights        [4]float64 // 从第一层非支配解中挑选最终解时各目标的权重
	Seed           int64      // 随机数种子，为 0 时使用当前时间
}
