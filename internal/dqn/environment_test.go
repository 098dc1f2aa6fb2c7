package dqn

import (
	"math/rand"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func testTrains() []*domain.Train {
	return []*domain.Train{
		{ID: 1, TrainNumber: "G1001", Capacity: 200, FuelEfficiency: 12.5, IsOperational: true},
		{ID: 2, TrainNumber: "D3002", Capacity: 150, FuelEfficiency: 10.0, IsOperational: true},
		{ID: 3, TrainNumber: "K2001", Capacity: 120, FuelEfficiency: 8.0, IsOperational: true},
	}
}

func testRoutes() []*domain.Route {
	return []*domain.Route{
		{ID: 1, Name: "广州南-深圳北", Distance: 100, EstimatedTravelTime: 45, IsActive: true},
		{ID: 2, Name: "广州-长沙", Distance: 600, EstimatedTravelTime: 200, IsActive: true},
	}
}

func newTestEnvironment(seed int64) *environment {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)
	return newEnvironment(testTrains(), testRoutes(), start, rand.New(rand.NewSource(seed)))
}

func TestEnvironmentInitialState(t *testing.T) {
	e := newTestEnvironment(1)

	s := e.state()

	if s[0] != 0 {
		t.Errorf("初始状态下不应该有列车在途，实际比例为 %v", s[0])
	}
	if s[1] != 1 {
		t.Errorf("初始状态下所有列车应该是满油的，实际为 %v", s[1])
	}
	if s[2] != 0 || s[3] != 0 {
		t.Errorf("初始状态下不应该有拥堵和晚点，实际为 %v 和 %v", s[2], s[3])
	}
	if want := 8.0 / 24.0; s[4] != want {
		t.Errorf("期望时刻特征为 %v，实际为 %v", want, s[4])
	}
	if s[6] != 1 || s[7] != 1 {
		t.Errorf("初始状态下油耗和晚点特征应该为 1，实际为 %v 和 %v", s[6], s[7])
	}
	if want := 3.0 / 50.0; s[9] != want {
		t.Errorf("期望车队规模特征为 %v，实际为 %v", want, s[9])
	}
	if want := 2.0 / 20.0; s[10] != want {
		t.Errorf("期望路网规模特征为 %v，实际为 %v", want, s[10])
	}
}

func TestEnvironmentScheduleTrain(t *testing.T) {
	e := newTestEnvironment(2)

	if reward := e.scheduleTrain(); reward != 0.5 {
		t.Errorf("期望安排列车的奖励为 0.5，实际为 %v", reward)
	}
	if e.totalPassengers < 50 || e.totalPassengers > 200 {
		t.Errorf("乘客数 %d 不在 50 到 200 之间", e.totalPassengers)
	}

	// 把剩余列车全部安排上线之后，继续安排应该受到惩罚
	for i := 0; i < len(e.trainIDs)-1; i++ {
		e.scheduleTrain()
	}
	if reward := e.scheduleTrain(); reward != -0.1 {
		t.Errorf("没有空闲列车时期望奖励为 -0.1，实际为 %v", reward)
	}
}

func TestEnvironmentDelayDeparture(t *testing.T) {
	e := newTestEnvironment(3)

	if reward := e.delayDeparture(); reward != -0.05 {
		t.Errorf("没有在途列车时期望奖励为 -0.05，实际为 %v", reward)
	}

	e.scheduleTrain()
	if reward := e.delayDeparture(); reward != -0.1 {
		t.Errorf("期望推迟发车的奖励为 -0.1，实际为 %v", reward)
	}
	if e.totalDelays != 1 {
		t.Errorf("期望累计晚点 1 次，实际为 %d", e.totalDelays)
	}
}

func TestEnvironmentChangeRoute(t *testing.T) {
	e := newTestEnvironment(4)

	if reward := e.changeRoute(); reward != -0.05 {
		t.Errorf("没有在途列车时期望奖励为 -0.05，实际为 %v", reward)
	}

	// 所有线路的拥堵程度都为零，换线不会带来改善
	e.scheduleTrain()
	if reward := e.changeRoute(); reward != -0.1 {
		t.Errorf("换线没有改善时期望奖励为 -0.1，实际为 %v", reward)
	}
}

func TestEnvironmentOptimizeSpeed(t *testing.T) {
	e := newTestEnvironment(5)

	if reward := e.optimizeSpeed(); reward != -0.05 {
		t.Errorf("没有在途列车时期望奖励为 -0.05，实际为 %v", reward)
	}

	e.scheduleTrain()
	if reward := e.optimizeSpeed(); reward != 0.3 {
		t.Errorf("期望调速的奖励为 0.3，实际为 %v", reward)
	}
	for _, id := range e.trainIDs {
		if level := e.trainStates[id].fuelLevel; level > 1 {
			t.Errorf("列车 %d 的油量 %v 超过了上限", id, level)
		}
	}
}

func TestEnvironmentUpdateCongestion(t *testing.T) {
	e := newTestEnvironment(6)

	e.routeStates[1].activeTrains = 4
	e.update()

	if e.routeStates[1].congestion != 1 {
		t.Errorf("四辆列车的线路拥堵程度应该为 1，实际为 %v", e.routeStates[1].congestion)
	}
	if delay := e.routeStates[1].avgDelay; delay < 5 || delay > 15 {
		t.Errorf("平均晚点 %v 不在 5 到 15 分钟之间", delay)
	}
	if e.routeStates[2].congestion != 0 {
		t.Errorf("空线路的拥堵程度应该为 0，实际为 %v", e.routeStates[2].congestion)
	}
}

func TestEnvironmentEpisodeEndsAfterOneDay(t *testing.T) {
	e := newTestEnvironment(7)

	// 每一步前进 30 分钟，一天的回合正好是 48 步
	for i := 0; i < 47; i++ {
		if _, _, done := e.step(actionDelayDeparture); done {
			t.Fatalf("第 %d 步不应该结束回合", i+1)
		}
	}
	if _, _, done := e.step(actionDelayDeparture); !done {
		t.Fatal("第 48 步应该结束回合")
	}
}

func TestEnvironmentResetClearsCounters(t *testing.T) {
	e := newTestEnvironment(8)

	for i := 0; i < 10; i++ {
		e.step(actionScheduleTrain)
	}
	if e.totalPassengers == 0 {
		t.Fatal("连续安排列车之后应该有乘客记录")
	}

	e.reset()

	if e.totalFuelConsumed != 0 || e.totalDelays != 0 || e.totalPassengers != 0 {
		t.Errorf("重置后统计数据应该清零，实际为 %v %d %d", e.totalFuelConsumed, e.totalDelays, e.totalPassengers)
	}
	if !e.currentTime.Equal(e.start) {
		t.Errorf("重置后时间应该回到 %v，实际为 %v", e.start, e.currentTime)
	}
}
