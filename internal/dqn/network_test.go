package dqn

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNetworkPredict(t *testing.T) {
	n := newNetwork(rand.New(rand.NewSource(1)))

	var s state
	for i := range s {
		s[i] = 0.5
	}

	q := n.predict(s)

	for action, value := range q {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			t.Errorf("动作 %d 的 Q 值 %v 不是有限数", action, value)
		}
	}

	// 相同输入应该得到相同输出
	if diff := cmp.Diff(q, n.predict(s)); diff != "" {
		t.Errorf("两次推断结果不一致 (-want +got):\n%s", diff)
	}
}

func TestNetworkSameSeedSameWeights(t *testing.T) {
	n1 := newNetwork(rand.New(rand.NewSource(42)))
	n2 := newNetwork(rand.New(rand.NewSource(42)))

	var s state
	for i := range s {
		s[i] = float64(i) / float64(len(s))
	}

	if diff := cmp.Diff(n1.predict(s), n2.predict(s)); diff != "" {
		t.Errorf("相同种子初始化的网络推断结果不一致 (-want +got):\n%s", diff)
	}
}

func TestNetworkSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "dqn_transport_model.gob")

	n1 := newNetwork(rand.New(rand.NewSource(1)))
	if err := n1.save(path); err != nil {
		t.Fatalf("保存模型失败: %v", err)
	}

	// 用不同种子初始化，加载之后两个网络应该完全一致
	n2 := newNetwork(rand.New(rand.NewSource(2)))
	if err := n2.load(path); err != nil {
		t.Fatalf("加载模型失败: %v", err)
	}

	var s state
	for i := range s {
		s[i] = 0.3
	}

	if diff := cmp.Diff(n1.predict(s), n2.predict(s)); diff != "" {
		t.Errorf("加载后的网络推断结果与保存前不一致 (-want +got):\n%s", diff)
	}
}

func TestNetworkCloneFrom(t *testing.T) {
	n1 := newNetwork(rand.New(rand.NewSource(1)))
	n2 := newNetwork(rand.New(rand.NewSource(2)))

	n2.cloneFrom(n1)

	var s state
	s[0] = 1

	if diff := cmp.Diff(n1.predict(s), n2.predict(s)); diff != "" {
		t.Errorf("拷贝后的网络推断结果不一致 (-want +got):\n%s", diff)
	}
}
