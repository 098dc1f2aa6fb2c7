package domain

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

type TaskType string

const (
	TaskTypeMultiObjective TaskType = "multi_objective"
	TaskTypeDQN            TaskType = "dqn"
	TaskTypeSchedule       TaskType = "schedule"
	TaskTypeRoute          TaskType = "route"
	TaskTypeFuel           TaskType = "fuel"
)

// TaskParameters 是下发给后台优化算法的参数，为零值的字段使用配置中的默认值
type TaskParameters struct {
	TimeHorizon    int32   `json:"timeHorizon,omitempty"`
	PopulationSize int32   `json:"populationSize,omitempty"`
	MaxGenerations int32   `json:"maxGenerations,omitempty"`
	CrossoverRate  float64 `json:"crossoverRate,omitempty"`
	MutationRate   float64 `json:"mutationRate,omitempty"`
	Episodes       int32   `json:"episodes,omitempty"`
	MaxSteps       int32   `json:"maxSteps,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
}

type OptimizationTask struct {
	ID           int64          `json:"id"`
	TaskID       string         `json:"taskID"`
	UserID       int64          `json:"userID"`
	Type         TaskType       `json:"type"`
	Status       TaskStatus     `json:"status"`
	Parameters   TaskParameters `json:"parameters"`
	// Results 是优化算法输出的 JSON，任务完成前为空
	Results      json.RawMessage `json:"results,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Attempts     int32           `json:"attempts"`
	StartedAt    *time.Time      `json:"startedAt,omitempty"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	Version      int32           `json:"-"`
}

// TaskMessage 是通过消息队列下发给 worker 的任务载荷
type TaskMessage struct {
	TaskID     string         `json:"taskID"`
	Type       TaskType       `json:"type"`
	Parameters TaskParameters `json:"parameters"`
	Attempts   int32          `json:"attempts"`
}
