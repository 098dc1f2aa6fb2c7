package dqn

import (
	"math/rand"
	"testing"
)

func TestAgentActExploresWithFullEpsilon(t *testing.T) {
	a := newAgent(rand.New(rand.NewSource(1)))

	// 探索概率为 1 时应该覆盖所有动作
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		action := a.act(state{})
		if action < 0 || action >= actionSize {
			t.Fatalf("动作 %d 超出取值范围", action)
		}
		seen[action] = true
	}

	if len(seen) != actionSize {
		t.Errorf("期望探索到 %d 种动作，实际只有 %d 种", actionSize, len(seen))
	}
}

func TestAgentActGreedyWithoutExploration(t *testing.T) {
	a := newAgent(rand.New(rand.NewSource(2)))
	a.epsilon = 0

	var s state
	for i := range s {
		s[i] = 0.5
	}

	q := a.qNetwork.predict(s)
	want := 0
	for action := 1; action < actionSize; action++ {
		if q[action] > q[want] {
			want = action
		}
	}

	if got := a.act(s); got != want {
		t.Errorf("期望贪心策略选择动作 %d，实际选择了 %d", want, got)
	}
}

func TestAgentRememberEvictsOldest(t *testing.T) {
	a := newAgent(rand.New(rand.NewSource(3)))

	for i := 0; i < memoryLimit+10; i++ {
		a.remember(experience{action: i % actionSize})
	}

	if len(a.memory) != memoryLimit {
		t.Errorf("期望经验池大小为 %d，实际为 %d", memoryLimit, len(a.memory))
	}
}

func TestAgentReplayRequiresEnoughMemory(t *testing.T) {
	a := newAgent(rand.New(rand.NewSource(4)))

	for i := 0; i < trainStart-1; i++ {
		a.remember(experience{})
	}

	a.replay()

	if a.epsilon != 1.0 {
		t.Errorf("经验不足时回放不应该衰减探索概率，实际为 %v", a.epsilon)
	}
}

func TestAgentReplayDecaysEpsilon(t *testing.T) {
	a := newAgent(rand.New(rand.NewSource(5)))

	for i := 0; i < trainStart+1; i++ {
		a.remember(experience{reward: 1, done: i%2 == 0})
	}

	a.replay()

	if want := epsilonDecay; a.epsilon != want {
		t.Errorf("期望一次回放后探索概率为 %v，实际为 %v", want, a.epsilon)
	}

	// 多次回放之后探索概率不会衰减到下限以下太多
	for i := 0; i < 2000; i++ {
		a.replay()
	}
	if a.epsilon < epsilonMin*epsilonDecay {
		t.Errorf("探索概率 %v 衰减过了下限", a.epsilon)
	}
}
