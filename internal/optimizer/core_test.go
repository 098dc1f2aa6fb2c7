package optimizer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func testTrains() []*domain.Train {
	return []*domain.Train{
		{ID: 1, TrainNumber: "G1001", Name: "和谐号", Type: domain.TrainTypeHighSpeed, Capacity: 200, MaxSpeed: 350, FuelEfficiency: 12.5, MaintenanceCostPerKm: 2.0, IsOperational: true},
		{ID: 2, TrainNumber: "K2001", Name: "东风号", Type: domain.TrainTypeRegular, Capacity: 120, MaxSpeed: 120, FuelEfficiency: 8.0, MaintenanceCostPerKm: 1.2, IsOperational: true},
	}
}

func testRoutes() []*domain.Route {
	return []*domain.Route{
		{ID: 1, Name: "广州南-深圳北", StartStation: "广州南", EndStation: "深圳北", Distance: 100, EstimatedTravelTime: 45, IsActive: true},
		{ID: 2, Name: "广州-长沙", StartStation: "广州", EndStation: "长沙", Distance: 600, EstimatedTravelTime: 200, IsActive: true},
	}
}

func newTestOptimizer(t *testing.T, seed int64) *Optimizer {
	t.Helper()

	o, err := New(&Parameters{
		PopulationSize: 4,
		MaxGenerations: 1,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		TimeHorizon:    24,
		Seed:           seed,
	}, testTrains(), testRoutes())
	if err != nil {
		t.Fatalf("创建优化器失败: %v", err)
	}

	return o
}

var cmpUnexported = cmp.AllowUnexported(individual{}, Trip{})

func TestRandomInitIndividual(t *testing.T) {
	o := newTestOptimizer(t, 1)

	trainByID := o.trainByID
	routeByID := o.routeByID

	for i := 0; i < 20; i++ {
		ind := o.randomInitIndividual()

		if len(ind.trips) < 10 || len(ind.trips) > 30 {
			t.Fatalf("出行数 %d 不在 10 到 30 之间", len(ind.trips))
		}

		for _, trip := range ind.trips {
			train, ok := trainByID[trip.trainID]
			if !ok {
				t.Fatalf("出行引用了不存在的列车 %d", trip.trainID)
			}
			route, ok := routeByID[trip.routeID]
			if !ok {
				t.Fatalf("出行引用了不存在的线路 %d", trip.routeID)
			}

			if hour := trip.departureTime.Hour(); hour > 22 {
				t.Errorf("出发时间 %v 超出了调度时间窗", trip.departureTime)
			}
			if want := trip.departureTime.Add(time.Duration(route.EstimatedTravelTime) * time.Minute); !trip.arrivalTime.Equal(want) {
				t.Errorf("期望到达时间为 %v，实际为 %v", want, trip.arrivalTime)
			}
			if trip.passengerLoad < 50 || trip.passengerLoad > train.Capacity {
				t.Errorf("载客量 %d 不在 50 到 %d 之间", trip.passengerLoad, train.Capacity)
			}
		}
	}
}

func TestCrossoverConservesTrips(t *testing.T) {
	o := newTestOptimizer(t, 2)

	p1 := o.randomInitIndividual()
	p2 := o.randomInitIndividual()
	p1Snapshot := p1.clone()
	p2Snapshot := p2.clone()

	c1, c2 := o.crossover(p1, p2)

	// 双亲不应该被修改
	if diff := cmp.Diff(p1Snapshot, p1, cmpUnexported); diff != "" {
		t.Errorf("交叉修改了父本 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p2Snapshot, p2, cmpUnexported); diff != "" {
		t.Errorf("交叉修改了母本 (-want +got):\n%s", diff)
	}

	// 两个孩子合起来应该恰好持有双亲的全部出行
	if got, want := len(c1.trips)+len(c2.trips), len(p1.trips)+len(p2.trips); got != want {
		t.Fatalf("期望孩子共持有 %d 次出行，实际为 %d", want, got)
	}

	count := func(trips []Trip) map[Trip]int {
		m := make(map[Trip]int)
		for _, trip := range trips {
			m[trip]++
		}
		return m
	}

	parentCount := count(append(append([]Trip{}, p1.trips...), p2.trips...))
	childCount := count(append(append([]Trip{}, c1.trips...), c2.trips...))

	if diff := cmp.Diff(parentCount, childCount, cmpUnexported); diff != "" {
		t.Errorf("交叉前后出行的多重集合不一致 (-want +got):\n%s", diff)
	}
}

func TestMutateIsPure(t *testing.T) {
	o := newTestOptimizer(t, 3)

	ind := o.randomInitIndividual()
	snapshot := ind.clone()

	for i := 0; i < 50; i++ {
		mutated := o.mutate(ind)

		if diff := cmp.Diff(snapshot, ind, cmpUnexported); diff != "" {
			t.Fatalf("变异修改了输入个体 (-want +got):\n%s", diff)
		}
		if len(mutated.trips) != len(ind.trips) {
			t.Fatalf("变异改变了出行数，期望 %d 实际 %d", len(ind.trips), len(mutated.trips))
		}
	}
}

func TestMutateBounds(t *testing.T) {
	o := newTestOptimizer(t, 4)

	ind := o.randomInitIndividual()

	for i := 0; i < 100; i++ {
		mutated := o.mutate(ind)

		changed := 0
		for j := range ind.trips {
			if mutated.trips[j] != ind.trips[j] {
				changed++
			}

			// 只有时间平移会改变出发时间，且幅度不超过 30 分钟
			delta := mutated.trips[j].departureTime.Sub(ind.trips[j].departureTime)
			if delta < -30*time.Minute || delta > 30*time.Minute {
				t.Fatalf("出发时间平移了 %v，超出前后 30 分钟", delta)
			}
		}

		// 单次变异最多影响两次出行
		if changed > 2 {
			t.Fatalf("一次变异改变了 %d 次出行", changed)
		}
	}
}

func TestEvaluate(t *testing.T) {
	o := newTestOptimizer(t, 5)

	day := o.day
	ind := &individual{trips: []Trip{
		{trainID: 1, routeID: 1, departureTime: day.Add(8 * time.Hour), arrivalTime: day.Add(8*time.Hour + 45*time.Minute), passengerLoad: 100},
		{trainID: 1, routeID: 1, departureTime: day.Add(10 * time.Hour), arrivalTime: day.Add(10*time.Hour + 45*time.Minute), passengerLoad: 200},
	}}

	objs := o.evaluate(ind)

	// 两次出行都使用 1 号列车跑 1 号线路: 油耗 = 2 * 100 / 12.5
	if want := 16.0; objs[objFuel] != want {
		t.Errorf("期望燃油消耗为 %v，实际为 %v", want, objs[objFuel])
	}
	// 成本 = 2 * (100 * 2.0 + 8 * 1.5)
	if want := 424.0; objs[objCost] != want {
		t.Errorf("期望运营成本为 %v，实际为 %v", want, objs[objCost])
	}
	// 载客率 = (50% + 100%) / 2，取负
	if want := -75.0; objs[objUtilization] != want {
		t.Errorf("期望载客率为 %v，实际为 %v", want, objs[objUtilization])
	}
	// 准点率是随机模拟的，只检查取值范围
	if objs[objOnTime] < -1 || objs[objOnTime] > 0 {
		t.Errorf("准点率 %v 超出取值范围", objs[objOnTime])
	}
}

func TestEvaluateSkipsUnknownReferences(t *testing.T) {
	o := newTestOptimizer(t, 6)

	day := o.day
	ind := &individual{trips: []Trip{
		{trainID: 1, routeID: 1, departureTime: day.Add(8 * time.Hour), arrivalTime: day.Add(8*time.Hour + 45*time.Minute), passengerLoad: 200},
		{trainID: 999, routeID: 1, departureTime: day.Add(9 * time.Hour), arrivalTime: day.Add(9*time.Hour + 45*time.Minute), passengerLoad: 100},
	}}

	objs := o.evaluate(ind)

	// 只有第一次出行参与油耗统计
	if want := 8.0; objs[objFuel] != want {
		t.Errorf("期望燃油消耗为 %v，实际为 %v", want, objs[objFuel])
	}
	// 载客率的分母仍然是全部出行数
	if want := -50.0; objs[objUtilization] != want {
		t.Errorf("期望载客率为 %v，实际为 %v", want, objs[objUtilization])
	}
}

func TestEvaluateEmptyIndividual(t *testing.T) {
	o := newTestOptimizer(t, 7)

	objs := o.evaluate(&individual{})

	if objs != (Objectives{}) {
		t.Errorf("空时刻表的目标向量应该全为零，实际为 %v", objs)
	}
}

func TestSelectNextGenerationTrimsToPopulationSize(t *testing.T) {
	o := newTestOptimizer(t, 8)

	combined := make([]*individual, 8)
	objs := make([]Objectives, 8)
	for i := range combined {
		combined[i] = o.randomInitIndividual()
		objs[i] = o.evaluate(combined[i])
	}

	fronts := NonDominatedSort(objs)
	next := o.selectNextGeneration(combined, fronts, objs)

	if len(next) != int(o.parameters.PopulationSize) {
		t.Fatalf("期望下一代有 %d 个个体，实际为 %d", o.parameters.PopulationSize, len(next))
	}
}
