package optimizer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

type Optimizer struct {
	parameters *Parameters
	trains     []*domain.Train
	routes     []*domain.Route
	trainByID  map[int64]*domain.Train
	routeByID  map[int64]*domain.Route
	day        time.Time // 所有出行都安排在这一天内
	rng        *rand.Rand
}

func New(parameters *Parameters, trains []*domain.Train, routes []*domain.Route) (*Optimizer, error) {
	if parameters.PopulationSize <= 0 {
		return nil, fmt.Errorf("种群大小 %d 必须为正数", parameters.PopulationSize)
	}
	if parameters.MaxGenerations < 0 {
		return nil, fmt.Errorf("最大迭代次数 %d 不能为负数", parameters.MaxGenerations)
	}
	if parameters.CrossoverRate < 0 || parameters.CrossoverRate > 1 {
		return nil, fmt.Errorf("交叉概率 %f 必须在 0 到 1 之间", parameters.CrossoverRate)
	}
	if parameters.MutationRate < 0 || parameters.MutationRate > 1 {
		return nil, fmt.Errorf("变异概率 %f 必须在 0 到 1 之间", parameters.MutationRate)
	}
	if parameters.TimeHorizon < 2 {
		return nil, fmt.Errorf("调度时间窗 %d 小时太短，至少需要 2 小时", parameters.TimeHorizon)
	}

	// 权重未指定时四个目标均分
	if parameters.Weights == [4]float64{} {
		parameters.Weights = [4]float64{0.25, 0.25, 0.25, 0.25}
	}

	seed := parameters.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	now := time.Now()

	o := &Optimizer{
		parameters: parameters,
		trains:     trains,
		routes:     routes,
		trainByID:  make(map[int64]*domain.Train),
		routeByID:  make(map[int64]*domain.Route),
		day:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		rng:        rand.New(rand.NewSource(seed)),
	}

	for _, train := range trains {
		o.trainByID[train.ID] = train
	}
	for _, route := range routes {
		o.routeByID[route.ID] = route
	}

	return o, nil
}

func (o *Optimizer) Run() *Result {
	if len(o.trains) == 0 || len(o.routes) == 0 {
		return &Result{Error: "No available trains or routes for optimization"}
	}

	// 生成初始种群
	pop := make([]*individual, o.parameters.PopulationSize)
	for i := range pop {
		pop[i] = o.randomInitIndividual()
	}

	// 迭代
	for gen := 0; gen < int(o.parameters.MaxGenerations); gen++ {
		offspring := o.createOffspring(pop)

		combined := make([]*individual, 0, len(pop)+len(offspring))
		combined = append(combined, pop...)
		combined = append(combined, offspring...)

		objs := make([]Objectives, len(combined))
		for i, ind := range combined {
			objs[i] = o.evaluate(ind)
		}

		fronts := NonDominatedSort(objs)
		pop = o.selectNextGeneration(combined, fronts, objs)
	}

	// 对最终种群再评估一轮，从第一层非支配解中选出最终解
	objs := make([]Objectives, len(pop))
	for i, ind := range pop {
		objs[i] = o.evaluate(ind)
	}
	fronts := NonDominatedSort(objs)

	return o.formatResult(pop, fronts[0], objs)
}
