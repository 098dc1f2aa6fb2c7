package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

// publishOptimizationTask 把任务发送到消息队列，由 worker 消费执行
func (h *Handler) publishOptimizationTask(task *domain.OptimizationTask) error {
	message := domain.TaskMessage{
		TaskID:     task.TaskID,
		Type:       task.Type,
		Parameters: task.Parameters,
		Attempts:   task.Attempts,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.taskChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.TaskQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (h *Handler) CreateOptimizationTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type       string `json:"type" validate:"required,oneof=multi_objective dqn schedule route fuel"`
		Parameters struct {
			TimeHorizon    int32   `json:"timeHorizon" validate:"omitempty,gte=2,lte=168"`
			PopulationSize int32   `json:"populationSize" validate:"omitempty,gte=10,lte=500"`
			MaxGenerations int32   `json:"maxGenerations" validate:"omitempty,gte=1,lte=1000"`
			CrossoverRate  float64 `json:"crossoverRate" validate:"omitempty,gt=0,lte=1"`
			MutationRate   float64 `json:"mutationRate" validate:"omitempty,gt=0,lte=1"`
			Episodes       int32   `json:"episodes" validate:"omitempty,gte=1,lte=500"`
			MaxSteps       int32   `json:"maxSteps" validate:"omitempty,gte=1,lte=1000"`
			Seed           int64   `json:"seed"`
		} `json:"parameters"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	subString := r.Context().Value(SubCtxKey).(string)
	sub, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	task := &domain.OptimizationTask{
		TaskID: uuid.NewString(),
		UserID: sub,
		Type:   domain.TaskType(req.Type),
		Parameters: domain.TaskParameters{
			TimeHorizon:    req.Parameters.TimeHorizon,
			PopulationSize: req.Parameters.PopulationSize,
			MaxGenerations: req.Parameters.MaxGenerations,
			CrossoverRate:  req.Parameters.CrossoverRate,
			MutationRate:   req.Parameters.MutationRate,
			Episodes:       req.Parameters.Episodes,
			MaxSteps:       req.Parameters.MaxSteps,
			Seed:           req.Parameters.Seed,
		},
	}

	if err := h.repository.CreateOptimizationTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishOptimizationTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "优化任务创建成功", task)
}

func (h *Handler) GetOptimizationTasks(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))

	// 管理员可以看到全部任务，调度员只能看到自己创建的
	if role == domain.RoleAdmin {
		tasks, err := h.repository.GetAllOptimizationTasks()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		h.successResponse(w, r, "获取优化任务列表成功", tasks)
		return
	}

	subString := r.Context().Value(SubCtxKey).(string)
	sub, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	tasks, err := h.repository.GetOptimizationTasksByUser(sub)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取优化任务列表成功", tasks)
}

func (h *Handler) GetOptimizationTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(OptimizationTaskCtx).(*domain.OptimizationTask)
	h.successResponse(w, r, "获取优化任务成功", task)
}

func (h *Handler) RestartOptimizationTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(OptimizationTaskCtx).(*domain.OptimizationTask)

	if task.Status != domain.TaskStatusFailed {
		h.errorResponse(w, r, "只有执行失败的任务才能重新执行")
		return
	}

	if err := h.repository.RestartOptimizationTask(task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "重新执行任务失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishOptimizationTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务已重新加入执行队列", task)
}

func (h *Handler) DeleteOptimizationTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(OptimizationTaskCtx).(*domain.OptimizationTask)

	if task.Status == domain.TaskStatusRunning {
		h.errorResponse(w, r, "任务正在执行中，无法删除")
		return
	}

	if err := h.repository.DeleteOptimizationTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除优化任务成功", nil)
}
