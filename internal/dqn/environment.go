package dqn

import (
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

const (
	stateSize  = 12
	actionSize = 4
)

// 智能体可以选择的动作
const (
	actionScheduleTrain = iota
	actionDelayDeparture
	actionChangeRoute
	actionOptimizeSpeed
)

// 每个回合模拟一天，每一步前进 30 分钟
const (
	episodeDuration = 24 * time.Hour
	stepDuration    = 30 * time.Minute
)

// state: 调度系统当前状况的特征向量
type state [stateSize]float64

type trainState struct {
	busy         bool
	fuelLevel    float64
	currentRoute int64 // 为 0 时表示不在任何线路上
}

type routeState struct {
	congestion   float64
	activeTrains int
	avgDelay     float64
}

// environment: 供智能体交互的列车调度模拟环境
type environment struct {
	trains []*domain.Train
	routes []*domain.Route
	rng    *rand.Rand

	// 遍历时使用有序的 ID 列表，保证相同种子下结果可复现
	trainIDs []int64
	routeIDs []int64

	start       time.Time
	currentTime time.Time

	trainStates map[int64]*trainState
	routeStates map[int64]*routeState

	totalFuelConsumed float64
	totalDelays       int32
	totalPassengers   int32
}

func newEnvironment(trains []*domain.Train, routes []*domain.Route, start time.Time, rng *rand.Rand) *environment {
	e := &environment{
		trains:   trains,
		routes:   routes,
		rng:      rng,
		trainIDs: make([]int64, 0, len(trains)),
		routeIDs: make([]int64, 0, len(routes)),
		start:    start,
	}

	for _, train := range trains {
		e.trainIDs = append(e.trainIDs, train.ID)
	}
	for _, route := range routes {
		e.routeIDs = append(e.routeIDs, route.ID)
	}

	e.reset()

	return e
}

// reset 把环境恢复到回合开始时的状态
func (e *environment) reset() state {
	e.currentTime = e.start
	e.totalFuelConsumed = 0
	e.totalDelays = 0
	e.totalPassengers = 0

	e.trainStates = make(map[int64]*trainState, len(e.trainIDs))
	for _, id := range e.trainIDs {
		e.trainStates[id] = &trainState{
			fuelLevel: 1.0,
		}
	}

	e.routeStates = make(map[int64]*routeState, len(e.routeIDs))
	for _, id := range e.routeIDs {
		e.routeStates[id] = &routeState{}
	}

	return e.state()
}

func (e *environment) state() state {
	var s state

	if len(e.trainIDs) == 0 || len(e.routeIDs) == 0 {
		return s
	}

	busyTrains := 0
	avgFuel := 0.0
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy {
			busyTrains++
		}
		avgFuel += e.trainStates[id].fuelLevel
	}
	avgFuel /= float64(len(e.trainIDs))

	congestedRoutes := 0
	avgRouteDelay := 0.0
	for _, id := range e.routeIDs {
		if e.routeStates[id].congestion > 0.7 {
			congestedRoutes++
		}
		avgRouteDelay += e.routeStates[id].avgDelay
	}
	avgRouteDelay /= float64(len(e.routeIDs))

	s[0] = float64(busyTrains) / float64(len(e.trainIDs))
	s[1] = avgFuel
	s[2] = float64(congestedRoutes) / float64(len(e.routeIDs))
	s[3] = avgRouteDelay
	s[4] = float64(e.currentTime.Hour()) / 24.0
	s[5] = float64(e.currentTime.Weekday()) / 7.0
	s[6] = 1.0 - min(e.totalFuelConsumed/1000.0, 1.0)
	s[7] = max(0, 1.0-float64(e.totalDelays)/100.0)
	s[8] = min(float64(e.totalPassengers)/10000.0, 1.0)
	s[9] = float64(len(e.trainIDs)) / 50.0
	s[10] = float64(len(e.routeIDs)) / 20.0
	s[11] = float64(e.currentTime.Hour()%24) / 24.0

	return s
}

// step 执行一个动作并推进环境，返回新状态、奖励和回合是否结束
func (e *environment) step(action int) (state, float64, bool) {
	reward := 0.0

	switch action {
	case actionScheduleTrain:
		reward += e.scheduleTrain()
	case actionDelayDeparture:
		reward += e.delayDeparture()
	case actionChangeRoute:
		reward += e.changeRoute()
	case actionOptimizeSpeed:
		reward += e.optimizeSpeed()
	}

	e.currentTime = e.currentTime.Add(stepDuration)
	e.update()

	reward += e.comprehensiveReward()

	done := e.currentTime.Sub(e.start) >= episodeDuration

	return e.state(), reward, done
}

// scheduleTrain 安排一辆空闲列车上线
func (e *environment) scheduleTrain() float64 {
	available := make([]int64, 0, len(e.trainIDs))
	for _, id := range e.trainIDs {
		if !e.trainStates[id].busy {
			available = append(available, id)
		}
	}

	// 没有空闲列车时给予惩罚
	if len(available) == 0 {
		return -0.1
	}

	trainID := available[e.rng.Intn(len(available))]
	routeID := e.routeIDs[e.rng.Intn(len(e.routeIDs))]

	e.trainStates[trainID].busy = true
	e.trainStates[trainID].currentRoute = routeID
	e.routeStates[routeID].activeTrains++

	e.totalPassengers += int32(50 + e.rng.Intn(151))

	return 0.5
}

// delayDeparture 推迟一辆在途列车的发车
func (e *environment) delayDeparture() float64 {
	busy := make([]int64, 0, len(e.trainIDs))
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy {
			busy = append(busy, id)
		}
	}

	if len(busy) == 0 {
		return -0.05
	}

	e.totalDelays++

	return -0.1
}

// changeRoute 把一辆在途列车换到随机的新线路上
// 如果新线路比原线路更通畅则给予奖励
func (e *environment) changeRoute() float64 {
	busy := make([]int64, 0, len(e.trainIDs))
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy && e.trainStates[id].currentRoute != 0 {
			busy = append(busy, id)
		}
	}

	if len(busy) == 0 {
		return -0.05
	}

	trainID := busy[e.rng.Intn(len(busy))]
	oldRoute := e.trainStates[trainID].currentRoute
	newRoute := e.routeIDs[e.rng.Intn(len(e.routeIDs))]

	e.routeStates[oldRoute].activeTrains--
	e.routeStates[newRoute].activeTrains++
	e.trainStates[trainID].currentRoute = newRoute

	// 拥堵程度要到下一次 update 才会重新计算，这里比较的是换线前的值
	if e.routeStates[oldRoute].congestion > e.routeStates[newRoute].congestion {
		return 0.2
	}

	return -0.1
}

// optimizeSpeed 为所有在途列车调整车速以节省燃油
func (e *environment) optimizeSpeed() float64 {
	busy := make([]int64, 0, len(e.trainIDs))
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy {
			busy = append(busy, id)
		}
	}

	if len(busy) == 0 {
		return -0.05
	}

	fuelSaved := 0.05 + e.rng.Float64()*0.1
	for _, id := range busy {
		e.trainStates[id].fuelLevel = min(1.0, e.trainStates[id].fuelLevel+fuelSaved)
	}

	e.totalFuelConsumed *= 0.95

	return 0.3
}

// update 推进环境自身的动态变化
func (e *environment) update() {
	// 根据线路上的列车数更新拥堵程度
	for _, id := range e.routeIDs {
		rs := e.routeStates[id]
		rs.congestion = min(1.0, float64(rs.activeTrains)/3.0)
		rs.avgDelay = rs.congestion * (5 + e.rng.Float64()*10)
	}

	// 每辆在途列车有一成概率完成行程
	for _, id := range e.trainIDs {
		ts := e.trainStates[id]
		if ts.busy && e.rng.Float64() < 0.1 {
			ts.busy = false
			if ts.currentRoute != 0 {
				e.routeStates[ts.currentRoute].activeTrains--
			}
			ts.currentRoute = 0
			ts.fuelLevel *= 0.9
		}
	}

	busyCount := 0
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy {
			busyCount++
		}
	}
	e.totalFuelConsumed += float64(busyCount) * (10 + e.rng.Float64()*20)
}

/**
 * 根据系统整体表现计算综合奖励
 * 其中:
 * 		1. 燃油消耗和晚点次数带来惩罚
 * 		2. 运送乘客数带来奖励
 * 		3. 线路平均拥堵程度带来惩罚
 * 		4. 列车利用率带来奖励
 */
func (e *environment) comprehensiveReward() float64 {
	fuelReward := -e.totalFuelConsumed / 1000.0
	delayPenalty := -float64(e.totalDelays) * 0.1
	passengerReward := float64(e.totalPassengers) / 10000.0

	avgCongestion := 0.0
	for _, id := range e.routeIDs {
		avgCongestion += e.routeStates[id].congestion
	}
	avgCongestion /= float64(len(e.routeIDs))

	busyTrains := 0
	for _, id := range e.trainIDs {
		if e.trainStates[id].busy {
			busyTrains++
		}
	}
	utilizationReward := float64(busyTrains) / float64(len(e.trainIDs)) * 0.3

	return fuelReward + delayPenalty + passengerReward - avgCongestion*0.5 + utilizationReward
}
