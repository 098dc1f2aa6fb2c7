package optimizer

import (
	"math"
	"sort"
)

// 目标向量中各分量的下标
// 准点率和利用率取负，使得四个目标都按最小化处理
const (
	objFuel = iota
	objOnTime
	objCost
	objUtilization
)

// Objectives: 一个个体在四个优化目标上的取值
type Objectives [4]float64

// Dominates 判断 o 是否支配 other
// 即 o 在所有目标上都不差于 other，且至少在一个目标上严格更优
func (o Objectives) Dominates(other Objectives) bool {
	strictlyBetter := false

	for m := range o {
		if o[m] > other[m] {
			return false
		}
		if o[m] < other[m] {
			strictlyBetter = true
		}
	}

	return strictlyBetter
}

// NonDominatedSort 快速非支配排序
// 返回按支配层级划分的下标集合，第一层为非支配解
func NonDominatedSort(objs []Objectives) [][]int {
	n := len(objs)
	if n == 0 {
		return nil
	}

	dominatedSets := make([][]int, n) // 每个个体所支配的个体集合
	dominationCounts := make([]int, n)

	fronts := [][]int{{}}

	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			if objs[p].Dominates(objs[q]) {
				dominatedSets[p] = append(dominatedSets[p], q)
			} else if objs[q].Dominates(objs[p]) {
				dominationCounts[p]++
			}
		}

		if dominationCounts[p] == 0 {
			fronts[0] = append(fronts[0], p)
		}
	}

	for current := 0; current < len(fronts); current++ {
		next := []int{}

		for _, p := range fronts[current] {
			for _, q := range dominatedSets[p] {
				dominationCounts[q]--
				if dominationCounts[q] == 0 {
					next = append(next, q)
				}
			}
		}

		if len(next) > 0 {
			fronts = append(fronts, next)
		}
	}

	return fronts
}

// CrowdingDistances 计算同一层级内各个体的拥挤距离
// objs 只包含该层级个体的目标向量，返回值与 objs 一一对应
func CrowdingDistances(objs []Objectives) []float64 {
	n := len(objs)
	distances := make([]float64, n)

	// 个体数不超过 2 时全部视为边界解
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		return distances
	}

	for m := range objs[0] {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		// 稳定排序使得取值相同时保持原有顺序
		sort.SliceStable(order, func(i, j int) bool {
			return objs[order[i]][m] < objs[order[j]][m]
		})

		// 边界解获得无穷大距离，保证被优先保留
		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)

		valueRange := objs[order[n-1]][m] - objs[order[0]][m]
		if valueRange == 0 {
			continue
		}

		for i := 1; i < n-1; i++ {
			distances[order[i]] += (objs[order[i+1]][m] - objs[order[i-1]][m]) / valueRange
		}
	}

	return distances
}
