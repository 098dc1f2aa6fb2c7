package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (r *Repository) CreateOptimizationTask(task *domain.OptimizationTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	parameters, err := json.Marshal(task.Parameters)
	if err != nil {
		return fmt.Errorf("序列化优化参数失败: %w", err)
	}

	query := `
		INSERT INTO optimization_tasks (task_id, user_id, type, parameters)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, attempts, created_at, version
	`

	args := []any{task.TaskID, task.UserID, task.Type, parameters}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.Status, &task.Attempts, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOptimizationTaskByTaskID(taskID string) (*domain.OptimizationTask, error) {
	query := `
		SELECT id, user_id, type, status, parameters, results, error_message, attempts, started_at, finished_at, created_at, version
		FROM optimization_tasks WHERE task_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	task := &domain.OptimizationTask{
		TaskID: taskID,
	}

	var parameters []byte
	var results []byte

	dst := []any{&task.ID, &task.UserID, &task.Type, &task.Status, &parameters, &results, &task.ErrorMessage, &task.Attempts, &task.StartedAt, &task.FinishedAt, &task.CreatedAt, &task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, taskID).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(parameters, &task.Parameters); err != nil {
		return nil, fmt.Errorf("反序列化优化参数失败: %w", err)
	}
	task.Results = results

	return task, nil
}

func (r *Repository) GetAllOptimizationTasks() ([]*domain.OptimizationTask, error) {
	query := `
		SELECT id, task_id, user_id, type, status, parameters, results, error_message, attempts, started_at, finished_at, created_at, version
		FROM optimization_tasks
		ORDER BY created_at DESC
	`

	return r.queryOptimizationTasks(query)
}

// GetOptimizationTasksByUser 返回某个用户创建的所有优化任务
func (r *Repository) GetOptimizationTasksByUser(userID int64) ([]*domain.OptimizationTask, error) {
	query := `
		SELECT id, task_id, user_id, type, status, parameters, results, error_message, attempts, started_at, finished_at, created_at, version
		FROM optimization_tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryOptimizationTasks(query, userID)
}

func (r *Repository) queryOptimizationTasks(query string, args ...any) ([]*domain.OptimizationTask, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.OptimizationTask, 0)
	for rows.Next() {
		task := &domain.OptimizationTask{}

		var parameters []byte
		var results []byte

		dst := []any{&task.ID, &task.TaskID, &task.UserID, &task.Type, &task.Status, &parameters, &results, &task.ErrorMessage, &task.Attempts, &task.StartedAt, &task.FinishedAt, &task.CreatedAt, &task.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(parameters, &task.Parameters); err != nil {
			return nil, fmt.Errorf("反序列化优化参数失败: %w", err)
		}
		task.Results = results

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// MarkOptimizationTaskRunning 把任务标记为执行中
// 任务的状态转移由 worker 驱动，不做乐观锁检查
func (r *Repository) MarkOptimizationTaskRunning(taskID string, attempts int32) error {
	query := `
		UPDATE optimization_tasks
		SET status = 'running', attempts = $2, error_message = '', started_at = now(), finished_at = NULL
		WHERE task_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, taskID, attempts); err != nil {
		return err
	}

	return nil
}

// CompleteOptimizationTask 把任务标记为已完成并写入优化结果
func (r *Repository) CompleteOptimizationTask(taskID string, results []byte) error {
	query := `
		UPDATE optimization_tasks
		SET status = 'completed', results = $2, finished_at = now()
		WHERE task_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, taskID, results); err != nil {
		return err
	}

	return nil
}

// FailOptimizationTask 把任务标记为失败并记录出错原因
func (r *Repository) FailOptimizationTask(taskID string, errorMessage string) error {
	query := `
		UPDATE optimization_tasks
		SET status = 'failed', error_message = $2, finished_at = now()
		WHERE task_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, taskID, errorMessage); err != nil {
		return err
	}

	return nil
}

// RestartOptimizationTask 清空执行记录，把任务恢复到待执行状态
func (r *Repository) RestartOptimizationTask(task *domain.OptimizationTask) error {
	query := `
		UPDATE optimization_tasks
		SET
			status = 'pending',
			results = NULL,
			error_message = '',
			attempts = 0,
			started_at = NULL,
			finished_at = NULL,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING status, results, error_message, attempts, started_at, finished_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var results []byte

	dst := []any{&task.Status, &results, &task.ErrorMessage, &task.Attempts, &task.StartedAt, &task.FinishedAt, &task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, task.ID, task.Version).Scan(dst...); err != nil {
		return err
	}
	task.Results = results

	return nil
}

func (r *Repository) DeleteOptimizationTask(id int64) error {
	query := `
		DELETE FROM optimization_tasks WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// DeleteCompletedTasksBefore 删除指定时间之前创建的已完成任务，返回删除的行数
func (r *Repository) DeleteCompletedTasksBefore(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM optimization_tasks WHERE status = 'completed' AND created_at < $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
