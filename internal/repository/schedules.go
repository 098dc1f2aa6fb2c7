package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (r *Repository) CreateSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO schedules (train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{schedule.TrainID, schedule.RouteID, schedule.DepartureTime, schedule.ArrivalTime, schedule.PassengerLoad, schedule.IsCancelled}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	query := `
		SELECT train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	schedule := &domain.Schedule{
		ID: id,
	}

	dst := []any{&schedule.TrainID, &schedule.RouteID, &schedule.DepartureTime, &schedule.ArrivalTime, &schedule.PassengerLoad, &schedule.IsCancelled, &schedule.CreatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return schedule, nil
}

// ScheduleFilter 是查询时刻表时的过滤条件，零值字段表示不过滤
type ScheduleFilter struct {
	TrainID   int64
	RouteID   int64
	Cancelled *bool
}

func (r *Repository) GetSchedules(filter ScheduleFilter) ([]*domain.Schedule, error) {
	query := `
		SELECT id, train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules
		WHERE 1 = 1
	`

	args := []any{}
	if filter.TrainID != 0 {
		args = append(args, filter.TrainID)
		query += fmt.Sprintf(" AND train_id = $%d", len(args))
	}
	if filter.RouteID != 0 {
		args = append(args, filter.RouteID)
		query += fmt.Sprintf(" AND route_id = $%d", len(args))
	}
	if filter.Cancelled != nil {
		args = append(args, *filter.Cancelled)
		query += fmt.Sprintf(" AND is_cancelled = $%d", len(args))
	}

	query += " ORDER BY departure_time"

	return r.querySchedules(query, args...)
}

// GetSchedulesByTrain 返回某辆列车的所有班次
func (r *Repository) GetSchedulesByTrain(trainID int64) ([]*domain.Schedule, error) {
	query := `
		SELECT id, train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules
		WHERE train_id = $1
		ORDER BY departure_time
	`

	return r.querySchedules(query, trainID)
}

// GetSchedulesByRoute 返回某条线路上的所有班次
func (r *Repository) GetSchedulesByRoute(routeID int64) ([]*domain.Schedule, error) {
	query := `
		SELECT id, train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules
		WHERE route_id = $1
		ORDER BY departure_time
	`

	return r.querySchedules(query, routeID)
}

// GetTodaySchedules 返回今天发车且没有停运的所有班次
func (r *Repository) GetTodaySchedules() ([]*domain.Schedule, error) {
	query := `
		SELECT id, train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules
		WHERE departure_time >= date_trunc('day', now()) AND departure_time < date_trunc('day', now()) + interval '1 day'
			AND is_cancelled = false
		ORDER BY departure_time
	`

	return r.querySchedules(query)
}

// GetUpcomingSchedules 返回接下来即将发车的班次
func (r *Repository) GetUpcomingSchedules(limit int32) ([]*domain.Schedule, error) {
	query := `
		SELECT id, train_id, route_id, departure_time, arrival_time, passenger_load, is_cancelled, created_at, version
		FROM schedules
		WHERE departure_time >= now() AND is_cancelled = false
		ORDER BY departure_time
		LIMIT $1
	`

	return r.querySchedules(query, limit)
}

func (r *Repository) querySchedules(query string, args ...any) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		schedule := &domain.Schedule{}
		dst := []any{&schedule.ID, &schedule.TrainID, &schedule.RouteID, &schedule.DepartureTime, &schedule.ArrivalTime, &schedule.PassengerLoad, &schedule.IsCancelled, &schedule.CreatedAt, &schedule.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) UpdateSchedule(schedule *domain.Schedule) error {
	query := `
		UPDATE schedules
		SET
			train_id = $1,
			route_id = $2,
			departure_time = $3,
			arrival_time = $4,
			passenger_load = $5,
			is_cancelled = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{schedule.TrainID, schedule.RouteID, schedule.DepartureTime, schedule.ArrivalTime, schedule.PassengerLoad, schedule.IsCancelled, schedule.ID, schedule.Version}
	dst := []any{&schedule.CreatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSchedule(id int64) error {
	query := `
		DELETE FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
