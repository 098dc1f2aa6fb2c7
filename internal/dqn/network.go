package dqn

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// 各层神经元数量，输入为状态向量，输出为每个动作的 Q 值
var layerSizes = [...]int{stateSize, 128, 128, 64, actionSize}

// network: Q 网络
// 权重随机初始化之后保持不变，目前只提供前向推断
// 反向传播训练尚未实现，fit 保留接口但不更新权重
type network struct {
	weights []*mat.Dense
	biases  []*mat.Dense
}

func newNetwork(rng *rand.Rand) *network {
	n := &network{}

	for i := 0; i+1 < len(layerSizes); i++ {
		in, out := layerSizes[i], layerSizes[i+1]

		// 均匀分布初始化，幅度随输入规模缩小
		limit := 1.0 / math.Sqrt(float64(in))
		data := make([]float64, in*out)
		for j := range data {
			data[j] = (rng.Float64()*2 - 1) * limit
		}

		n.weights = append(n.weights, mat.NewDense(in, out, data))
		n.biases = append(n.biases, mat.NewDense(1, out, nil))
	}

	return n
}

// predict 对单个状态做前向推断，返回每个动作的 Q 值
func (n *network) predict(s state) [actionSize]float64 {
	x := mat.NewDense(1, stateSize, append([]float64(nil), s[:]...))

	for i := range n.weights {
		var out mat.Dense
		out.Mul(x, n.weights[i])
		out.Add(&out, n.biases[i])

		// 除输出层外经过 ReLU 激活
		if i+1 < len(n.weights) {
			out.Apply(func(_, _ int, v float64) float64 {
				return math.Max(0, v)
			}, &out)
		}

		x = &out
	}

	var q [actionSize]float64
	copy(q[:], x.RawRowView(0))

	return q
}

// fit 以一批经验和对应的目标 Q 值更新网络
// 当前权重保持不变，智能体实际上按固定的随机策略探索
func (n *network) fit(states []state, targets [][actionSize]float64) {
}

// cloneFrom 把 src 的权重深拷贝到 n 中
func (n *network) cloneFrom(src *network) {
	for i := range src.weights {
		n.weights[i].Copy(src.weights[i])
		n.biases[i].Copy(src.biases[i])
	}
}

// networkSnapshot 是网络权重的序列化形式
type networkSnapshot struct {
	Weights [][]float64
	Biases  [][]float64
}

// save 把网络权重写入文件
func (n *network) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建模型目录失败: %w", err)
	}

	snapshot := networkSnapshot{}
	for i := range n.weights {
		snapshot.Weights = append(snapshot.Weights, append([]float64(nil), n.weights[i].RawMatrix().Data...))
		snapshot.Biases = append(snapshot.Biases, append([]float64(nil), n.biases[i].RawMatrix().Data...))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建模型文件失败: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(snapshot); err != nil {
		return fmt.Errorf("序列化模型失败: %w", err)
	}

	return nil
}

// load 从文件中恢复网络权重
func (n *network) load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开模型文件失败: %w", err)
	}
	defer file.Close()

	snapshot := networkSnapshot{}
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		return fmt.Errorf("反序列化模型失败: %w", err)
	}

	if len(snapshot.Weights) != len(n.weights) || len(snapshot.Biases) != len(n.biases) {
		return fmt.Errorf("模型文件的层数与网络结构不一致")
	}

	for i := range n.weights {
		in, out := layerSizes[i], layerSizes[i+1]
		if len(snapshot.Weights[i]) != in*out || len(snapshot.Biases[i]) != out {
			return fmt.Errorf("模型文件第 %d 层的规模与网络结构不一致", i)
		}

		n.weights[i] = mat.NewDense(in, out, snapshot.Weights[i])
		n.biases[i] = mat.NewDense(1, out, snapshot.Biases[i])
	}

	return nil
}
