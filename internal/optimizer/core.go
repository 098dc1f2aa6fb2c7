package optimizer

import (
	"math"
	"sort"
	"time"
)

// randomInitIndividual 随机初始化一张时刻表
func (o *Optimizer) randomInitIndividual() *individual {
	numTrips := 10 + o.rng.Intn(21)
	trips := make([]Trip, 0, numTrips)

	for i := 0; i < numTrips; i++ {
		train := o.trains[o.rng.Intn(len(o.trains))]
		route := o.routes[o.rng.Intn(len(o.routes))]

		// 出发时间在调度时间窗内随机，保留最后两小时以容纳行程
		startHour := o.rng.Intn(int(o.parameters.TimeHorizon) - 1)
		departure := o.day.Add(time.Duration(startHour)*time.Hour + time.Duration(o.rng.Intn(60))*time.Minute)
		arrival := departure.Add(time.Duration(route.EstimatedTravelTime) * time.Minute)

		load := train.Capacity
		if train.Capacity > 50 {
			load = 50 + int32(o.rng.Intn(int(train.Capacity)-49))
		}

		trips = append(trips, Trip{
			trainID:       train.ID,
			routeID:       route.ID,
			departureTime: departure,
			arrivalTime:   arrival,
			passengerLoad: load,
		})
	}

	return &individual{
		trips: trips,
	}
}

/**
 * 评估一张时刻表在四个目标上的取值
 * 其中:
 * 		1. objFuel 为总燃油消耗（行驶距离除以燃油效率）
 * 		2. objOnTime 为准点班次占比取负（晚点不超过 5 分钟视为准点）
 * 		3. objCost 为运营成本（按公里计的维护成本加上燃油成本）
 * 		4. objUtilization 为平均载客率取负
 * 准点率和利用率取负之后，四个目标都按最小化处理
 * 引用了不存在的列车或线路的出行不参与对应目标的累加
 */
func (o *Optimizer) evaluate(ind *individual) Objectives {
	var objs Objectives

	totalOnTime := 0
	totalUtilization := 0.0

	for _, trip := range ind.trips {
		train, trainOK := o.trainByID[trip.trainID]
		route, routeOK := o.routeByID[trip.routeID]

		if trainOK && routeOK {
			fuel := route.Distance / train.FuelEfficiency
			objs[objFuel] += fuel
			objs[objCost] += route.Distance*train.MaintenanceCostPerKm + fuel*1.5
		}

		if trainOK {
			totalUtilization += float64(trip.passengerLoad) / float64(train.Capacity) * 100
		}

		// 用正态分布模拟晚点时长
		delay := math.Max(0, o.rng.NormFloat64()*5+2)
		if delay <= 5 {
			totalOnTime++
		}
	}

	if len(ind.trips) > 0 {
		objs[objOnTime] = -float64(totalOnTime) / float64(len(ind.trips))
		objs[objUtilization] = -totalUtilization / float64(len(ind.trips))
	}

	return objs
}

// createOffspring 通过交叉和变异产生与当前种群规模相同的子代
func (o *Optimizer) createOffspring(pop []*individual) []*individual {
	offspring := make([]*individual, 0, len(pop))

	for i := 0; i < len(pop)/2; i++ {
		p1 := pop[o.rng.Intn(len(pop))]
		p2 := pop[o.rng.Intn(len(pop))]

		var c1, c2 *individual
		if o.rng.Float64() < o.parameters.CrossoverRate {
			c1, c2 = o.crossover(p1, p2)
		} else {
			c1 = p1.clone()
			c2 = p2.clone()
		}

		if o.rng.Float64() < o.parameters.MutationRate {
			c1 = o.mutate(c1)
		}
		if o.rng.Float64() < o.parameters.MutationRate {
			c2 = o.mutate(c2)
		}

		offspring = append(offspring, c1, c2)
	}

	return offspring
}

func (ind *individual) clone() *individual {
	trips := make([]Trip, len(ind.trips))
	copy(trips, ind.trips)

	return &individual{
		trips: trips,
	}
}

// crossover 把双亲的所有出行汇集打乱后对半拆分成两个孩子
// 孩子持有出行的副本，不会与双亲共享
func (o *Optimizer) crossover(p1 *individual, p2 *individual) (*individual, *individual) {
	all := make([]Trip, 0, len(p1.trips)+len(p2.trips))
	all = append(all, p1.trips...)
	all = append(all, p2.trips...)

	o.rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	mid := len(all) / 2

	return &individual{trips: all[:mid:mid]}, &individual{trips: all[mid:]}
}

// mutate 随机选择一种变异方式作用在时刻表的副本上
func (o *Optimizer) mutate(ind *individual) *individual {
	mutated := ind.clone()

	switch o.rng.Intn(3) {
	case 0:
		// 平移某次出行的时间，幅度在前后 30 分钟内
		if len(mutated.trips) == 0 {
			break
		}
		i := o.rng.Intn(len(mutated.trips))
		shift := time.Duration(o.rng.Intn(61)-30) * time.Minute
		mutated.trips[i].departureTime = mutated.trips[i].departureTime.Add(shift)
		mutated.trips[i].arrivalTime = mutated.trips[i].arrivalTime.Add(shift)
	case 1:
		// 交换两次出行所使用的列车
		if len(mutated.trips) < 2 {
			break
		}
		i := o.rng.Intn(len(mutated.trips))
		j := o.rng.Intn(len(mutated.trips) - 1)
		if j >= i {
			j++
		}
		mutated.trips[i].trainID, mutated.trips[j].trainID = mutated.trips[j].trainID, mutated.trips[i].trainID
	case 2:
		// 为某次出行更换线路，并按新线路重新计算到达时间
		if len(mutated.trips) == 0 {
			break
		}
		i := o.rng.Intn(len(mutated.trips))
		route := o.routes[o.rng.Intn(len(o.routes))]
		mutated.trips[i].routeID = route.ID
		mutated.trips[i].arrivalTime = mutated.trips[i].departureTime.Add(time.Duration(route.EstimatedTravelTime) * time.Minute)
	}

	return mutated
}

// selectNextGeneration 按支配层级逐层填充下一代
// 放不下的那一层按拥挤距离从大到小截断
func (o *Optimizer) selectNextGeneration(combined []*individual, fronts [][]int, objs []Objectives) []*individual {
	next := make([]*individual, 0, o.parameters.PopulationSize)

	for _, front := range fronts {
		if len(next)+len(front) <= int(o.parameters.PopulationSize) {
			for _, idx := range front {
				next = append(next, combined[idx])
			}
			continue
		}

		remaining := int(o.parameters.PopulationSize) - len(next)

		frontObjs := make([]Objectives, len(front))
		for i, idx := range front {
			frontObjs[i] = objs[idx]
		}
		distances := CrowdingDistances(frontObjs)

		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return distances[order[a]] > distances[order[b]]
		})

		for _, i := range order[:remaining] {
			next = append(next, combined[front[i]])
		}

		break
	}

	return next
}
