package dqn

import (
	"math/rand"
	"os"
)

const (
	memoryLimit  = 10000
	trainStart   = 1000 // 经验数超过该值后才开始回放训练
	batchSize    = 32
	gamma        = 0.95
	epsilonMin   = 0.01
	epsilonDecay = 0.995
)

// experience: 一次状态转移的完整记录
type experience struct {
	state     state
	action    int
	reward    float64
	nextState state
	done      bool
}

// agent: 带经验回放和目标网络的 DQN 智能体
type agent struct {
	qNetwork      *network
	targetNetwork *network
	memory        []experience
	epsilon       float64 // 探索概率，随训练衰减
	rng           *rand.Rand
}

func newAgent(rng *rand.Rand) *agent {
	a := &agent{
		qNetwork:      newNetwork(rng),
		targetNetwork: newNetwork(rng),
		epsilon:       1.0,
		rng:           rng,
	}
	a.updateTargetNetwork()

	return a
}

// updateTargetNetwork 把 Q 网络的权重同步到目标网络
func (a *agent) updateTargetNetwork() {
	a.targetNetwork.cloneFrom(a.qNetwork)
}

// remember 把一次状态转移存入经验池，池满时丢弃最旧的经验
func (a *agent) remember(exp experience) {
	if len(a.memory) >= memoryLimit {
		a.memory = a.memory[1:]
	}
	a.memory = append(a.memory, exp)
}

// act 按 epsilon-greedy 策略选择动作
func (a *agent) act(s state) int {
	if a.rng.Float64() <= a.epsilon {
		return a.rng.Intn(actionSize)
	}

	q := a.qNetwork.predict(s)

	best := 0
	for action := 1; action < actionSize; action++ {
		if q[action] > q[best] {
			best = action
		}
	}

	return best
}

// replay 从经验池中抽取一批经验计算目标 Q 值并训练网络
// 每次回放之后探索概率衰减一次
func (a *agent) replay() {
	if len(a.memory) < trainStart {
		return
	}

	indices := a.rng.Perm(len(a.memory))[:batchSize]

	states := make([]state, batchSize)
	targets := make([][actionSize]float64, batchSize)

	for i, idx := range indices {
		exp := a.memory[idx]

		target := a.qNetwork.predict(exp.state)
		if exp.done {
			target[exp.action] = exp.reward
		} else {
			next := a.targetNetwork.predict(exp.nextState)

			maxNext := next[0]
			for action := 1; action < actionSize; action++ {
				if next[action] > maxNext {
					maxNext = next[action]
				}
			}

			target[exp.action] = exp.reward + gamma*maxNext
		}

		states[i] = exp.state
		targets[i] = target
	}

	a.qNetwork.fit(states, targets)

	if a.epsilon > epsilonMin {
		a.epsilon *= epsilonDecay
	}
}

// loadModel 尝试从文件恢复 Q 网络，文件不存在时直接返回
func (a *agent) loadModel(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	if err := a.qNetwork.load(path); err != nil {
		return err
	}
	a.updateTargetNetwork()

	return nil
}

// saveModel 把 Q 网络写入文件
func (a *agent) saveModel(path string) error {
	return a.qNetwork.save(path)
}
