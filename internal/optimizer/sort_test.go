package optimizer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDominates(t *testing.T) {
	a := Objectives{1, 1, 0, 0}
	b := Objectives{2, 2, 0, 0}
	c := Objectives{0, 3, 0, 0}

	if !a.Dominates(b) {
		t.Errorf("a 应该支配 b")
	}
	if b.Dominates(a) {
		t.Errorf("b 不应该支配 a")
	}
	if a.Dominates(a) {
		t.Errorf("个体不应该支配自己")
	}
	if a.Dominates(c) || c.Dominates(a) {
		t.Errorf("a 和 c 互不支配")
	}
}

func TestNonDominatedSort(t *testing.T) {
	objs := []Objectives{
		{1, 1, 0, 0}, // 第一层
		{2, 2, 0, 0}, // 只被第一层支配
		{0, 3, 0, 0}, // 第一层
		{3, 3, 0, 0}, // 被前面所有个体支配
	}

	fronts := NonDominatedSort(objs)

	want := [][]int{{0, 2}, {1}, {3}}
	if diff := cmp.Diff(want, fronts); diff != "" {
		t.Errorf("支配层级不符合预期 (-want +got):\n%s", diff)
	}
}

func TestNonDominatedSortEmpty(t *testing.T) {
	if fronts := NonDominatedSort(nil); fronts != nil {
		t.Errorf("空输入应该返回 nil，实际返回 %v", fronts)
	}
}

func TestNonDominatedSortPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	objs := make([]Objectives, 40)
	for i := range objs {
		for m := range objs[i] {
			objs[i][m] = rng.Float64() * 10
		}
	}

	fronts := NonDominatedSort(objs)

	// 每个个体必须恰好出现在一个层级中
	seen := make(map[int]int)
	for _, front := range fronts {
		if len(front) == 0 {
			t.Fatalf("不应该出现空的层级")
		}
		for _, idx := range front {
			seen[idx]++
		}
	}
	if len(seen) != len(objs) {
		t.Fatalf("期望 %d 个个体被划分，实际只有 %d 个", len(objs), len(seen))
	}
	for idx, cnt := range seen {
		if cnt != 1 {
			t.Errorf("个体 %d 出现了 %d 次", idx, cnt)
		}
	}

	// 第一层内部互不支配
	for _, p := range fronts[0] {
		for _, q := range fronts[0] {
			if p != q && objs[p].Dominates(objs[q]) {
				t.Errorf("第一层中 %d 支配了 %d", p, q)
			}
		}
	}

	// 除第一层外，每个个体都被上一层中的某个个体支配
	for k := 1; k < len(fronts); k++ {
		for _, q := range fronts[k] {
			dominated := false
			for _, p := range fronts[k-1] {
				if objs[p].Dominates(objs[q]) {
					dominated = true
					break
				}
			}
			if !dominated {
				t.Errorf("第 %d 层的个体 %d 没有被上一层的任何个体支配", k, q)
			}
		}
	}
}

func TestCrowdingDistances(t *testing.T) {
	objs := []Objectives{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{3, 0, 0, 0},
		{6, 0, 0, 0},
	}

	distances := CrowdingDistances(objs)

	if !math.IsInf(distances[0], 1) || !math.IsInf(distances[3], 1) {
		t.Errorf("边界个体的拥挤距离应该为正无穷，实际为 %v 和 %v", distances[0], distances[3])
	}
	if want := (3.0 - 0.0) / 6.0; distances[1] != want {
		t.Errorf("期望个体 1 的拥挤距离为 %v，实际为 %v", want, distances[1])
	}
	if want := (6.0 - 1.0) / 6.0; distances[2] != want {
		t.Errorf("期望个体 2 的拥挤距离为 %v，实际为 %v", want, distances[2])
	}
}

func TestCrowdingDistancesSmallFront(t *testing.T) {
	for n := 1; n <= 2; n++ {
		objs := make([]Objectives, n)
		for _, d := range CrowdingDistances(objs) {
			if !math.IsInf(d, 1) {
				t.Errorf("个体数为 %d 时所有拥挤距离都应该为正无穷，实际为 %v", n, d)
			}
		}
	}
}
