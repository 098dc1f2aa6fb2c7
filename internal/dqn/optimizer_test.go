package dqn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	if _, err := New(&Parameters{Episodes: 0, MaxSteps: 10}, testTrains(), testRoutes(), ""); err == nil {
		t.Error("回合数为零时期望返回错误，实际没有")
	}
	if _, err := New(&Parameters{Episodes: 10, MaxSteps: 0}, testTrains(), testRoutes(), ""); err == nil {
		t.Error("最大步数为零时期望返回错误，实际没有")
	}
}

func TestRunWithoutDataReturnsError(t *testing.T) {
	o, err := New(&Parameters{Episodes: 3, MaxSteps: 10, Seed: 1}, nil, testRoutes(), "")
	if err != nil {
		t.Fatalf("创建优化器失败: %v", err)
	}

	data, err := json.Marshal(o.Run())
	if err != nil {
		t.Fatalf("序列化结果失败: %v", err)
	}

	if want := `{"error":"No available trains or routes for DQN optimization"}`; string(data) != want {
		t.Errorf("期望序列化结果为 %s，实际为 %s", want, data)
	}
}

func TestRunProducesResult(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "dqn_transport_model.gob")

	o, err := New(&Parameters{Episodes: 3, MaxSteps: 10, Seed: 42}, testTrains(), testRoutes(), modelPath)
	if err != nil {
		t.Fatalf("创建优化器失败: %v", err)
	}

	result := o.Run()

	if result.Error != "" {
		t.Fatalf("优化不应该出错: %s", result.Error)
	}
	if want := "Deep Q-Network (DQN)"; result.Algorithm != want {
		t.Errorf("期望算法名为 %q，实际为 %q", want, result.Algorithm)
	}
	if result.EpisodesTrained != 3 {
		t.Errorf("期望训练 3 个回合，实际为 %d", result.EpisodesTrained)
	}
	if len(result.OptimizationLog) != 3 {
		t.Fatalf("期望 3 条回合记录，实际为 %d 条", len(result.OptimizationLog))
	}

	for i, entry := range result.OptimizationLog {
		if want := int32(i + 1); entry.Episode != want {
			t.Errorf("期望回合编号为 %d，实际为 %d", want, entry.Episode)
		}
		// 最大步数少于一整天的步数，每个回合都应该跑满
		if entry.Steps != 10 {
			t.Errorf("期望回合 %d 跑满 10 步，实际为 %d 步", entry.Episode, entry.Steps)
		}
	}

	// 经验池远未达到回放门槛，探索概率不应该衰减
	if result.FinalEpsilon != 1.0 {
		t.Errorf("期望探索概率保持 1.0，实际为 %v", result.FinalEpsilon)
	}

	if result.PerformanceImprovements == nil {
		t.Fatal("结果中缺少预期改善")
	}
	for _, value := range []string{
		result.PerformanceImprovements.FuelEfficiencyGain,
		result.PerformanceImprovements.ScheduleOptimization,
		result.PerformanceImprovements.RouteUtilization,
		result.PerformanceImprovements.DelayReduction,
	} {
		if !strings.HasSuffix(value, "%") {
			t.Errorf("预期改善 %q 应该以百分号结尾", value)
		}
	}

	if result.ModelSaved == nil || !*result.ModelSaved {
		t.Error("模型应该保存成功")
	}
	if _, err := os.Stat(modelPath); err != nil {
		t.Errorf("模型文件应该存在: %v", err)
	}
}

func TestRunRecommendationsAlwaysIncludeFixedAdvice(t *testing.T) {
	o, err := New(&Parameters{Episodes: 2, MaxSteps: 5, Seed: 7}, testTrains(), testRoutes(), "")
	if err != nil {
		t.Fatalf("创建优化器失败: %v", err)
	}

	result := o.Run()

	if len(result.Recommendations) < 4 {
		t.Fatalf("期望至少 4 条建议，实际为 %d 条", len(result.Recommendations))
	}

	fixed := []string{
		"Deploy trained DQN model for real-time decision making",
		"Continue episodic training to adapt to changing traffic patterns",
		"Implement DQN-based predictive maintenance scheduling",
		"Use reinforcement learning insights for capacity planning",
	}
	if diff := cmp.Diff(fixed, result.Recommendations[len(result.Recommendations)-4:]); diff != "" {
		t.Errorf("固定建议不符合预期 (-want +got):\n%s", diff)
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	run := func(dir string) *Result {
		t.Helper()

		o, err := New(&Parameters{Episodes: 3, MaxSteps: 10, Seed: 12345}, testTrains(), testRoutes(), filepath.Join(dir, "model.gob"))
		if err != nil {
			t.Fatalf("创建优化器失败: %v", err)
		}
		return o.Run()
	}

	first := run(t.TempDir())
	second := run(t.TempDir())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("相同种子的两次运行结果不一致 (-first +second):\n%s", diff)
	}
}
