package optimizer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	scenarios := []struct {
		name       string
		parameters Parameters
	}{
		{name: "种群大小为零", parameters: Parameters{PopulationSize: 0, MaxGenerations: 10, CrossoverRate: 0.8, MutationRate: 0.1, TimeHorizon: 24}},
		{name: "交叉概率过大", parameters: Parameters{PopulationSize: 10, MaxGenerations: 10, CrossoverRate: 1.5, MutationRate: 0.1, TimeHorizon: 24}},
		{name: "变异概率为负", parameters: Parameters{PopulationSize: 10, MaxGenerations: 10, CrossoverRate: 0.8, MutationRate: -0.1, TimeHorizon: 24}},
		{name: "时间窗过短", parameters: Parameters{PopulationSize: 10, MaxGenerations: 10, CrossoverRate: 0.8, MutationRate: 0.1, TimeHorizon: 1}},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			if _, err := New(&scenario.parameters, testTrains(), testRoutes()); err == nil {
				t.Errorf("期望返回错误，实际没有")
			}
		})
	}
}

func TestNewDefaultsToEqualWeights(t *testing.T) {
	o := newTestOptimizer(t, 1)

	if want := [4]float64{0.25, 0.25, 0.25, 0.25}; o.parameters.Weights != want {
		t.Errorf("期望默认权重为 %v，实际为 %v", want, o.parameters.Weights)
	}
}

func TestRunProducesResult(t *testing.T) {
	o := newTestOptimizer(t, 42)

	result := o.Run()

	if result.Error != "" {
		t.Fatalf("优化不应该出错: %s", result.Error)
	}
	if result.ObjectiveValues == nil {
		t.Fatal("结果中缺少目标值")
	}

	values := result.ObjectiveValues
	if values.FuelConsumption <= 0 {
		t.Errorf("燃油消耗 %v 应该为正数", values.FuelConsumption)
	}
	if values.OperationalCosts <= 0 {
		t.Errorf("运营成本 %v 应该为正数", values.OperationalCosts)
	}
	if values.OnTimePerformance < 0 || values.OnTimePerformance > 1 {
		t.Errorf("准点率 %v 应该在 0 到 1 之间", values.OnTimePerformance)
	}
	if values.CapacityUtilization < 0 || values.CapacityUtilization > 100 {
		t.Errorf("载客率 %v 应该在 0 到 100 之间", values.CapacityUtilization)
	}

	if len(result.OptimalSchedules) == 0 {
		t.Error("结果中应该包含优化后的时刻表")
	}
	for _, entry := range result.OptimalSchedules {
		if entry.TrainID == "Unknown" || entry.RouteName == "Unknown" {
			t.Errorf("时刻表中出现了未知的列车或线路: %+v", entry)
		}
	}

	improvements := result.PerformanceImprovements
	if improvements == nil {
		t.Fatal("结果中缺少预期改善")
	}
	for _, value := range []string{improvements.EstimatedFuelSavings, improvements.CostReduction, improvements.EfficiencyGain} {
		if !strings.HasSuffix(value, "%") {
			t.Errorf("预期改善 %q 应该以百分号结尾", value)
		}
	}

	if len(result.Recommendations) != 4 {
		t.Errorf("期望 4 条建议，实际为 %d 条", len(result.Recommendations))
	}
}

func TestRunWithoutDataReturnsError(t *testing.T) {
	o, err := New(&Parameters{
		PopulationSize: 4,
		MaxGenerations: 1,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		TimeHorizon:    24,
		Seed:           1,
	}, testTrains(), []*domain.Route{})
	if err != nil {
		t.Fatalf("创建优化器失败: %v", err)
	}

	result := o.Run()

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("序列化结果失败: %v", err)
	}

	// 出错时结果只包含 error 字段
	if want := `{"error":"No available trains or routes for optimization"}`; string(data) != want {
		t.Errorf("期望序列化结果为 %s，实际为 %s", want, data)
	}
}

func TestRunIsDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		t.Helper()

		o, err := New(&Parameters{
			PopulationSize: 10,
			MaxGenerations: 5,
			CrossoverRate:  0.8,
			MutationRate:   0.1,
			TimeHorizon:    24,
			Seed:           12345,
		}, testTrains(), testRoutes())
		if err != nil {
			t.Fatalf("创建优化器失败: %v", err)
		}
		return o.Run()
	}

	first := run()
	second := run()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("相同种子的两次运行结果不一致 (-first +second):\n%s", diff)
	}
}
