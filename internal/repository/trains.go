package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (r *Repository) CreateTrain(train *domain.Train) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO trains (train_number, name, type, capacity, max_speed, fuel_efficiency, maintenance_cost_per_km, is_operational)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{train.TrainNumber, train.Name, train.Type, train.Capacity, train.MaxSpeed, train.FuelEfficiency, train.MaintenanceCostPerKm, train.IsOperational}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&train.ID, &train.CreatedAt, &train.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTrainByID(id int64) (*domain.Train, error) {
	query := `
		SELECT train_number, name, type, capacity, max_speed, fuel_efficiency, maintenance_cost_per_km, is_operational, created_at, version
		FROM trains WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	train := &domain.Train{
		ID: id,
	}

	dst := []any{&train.TrainNumber, &train.Name, &train.Type, &train.Capacity, &train.MaxSpeed, &train.FuelEfficiency, &train.MaintenanceCostPerKm, &train.IsOperational, &train.CreatedAt, &train.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return train, nil
}

func (r *Repository) GetAllTrains() ([]*domain.Train, error) {
	query := `
		SELECT id, train_number, name, type, capacity, max_speed, fuel_efficiency, maintenance_cost_per_km, is_operational, created_at, version
		FROM trains
		ORDER BY train_number
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]*domain.Train, 0)
	for rows.Next() {
		train := &domain.Train{}
		dst := []any{&train.ID, &train.TrainNumber, &train.Name, &train.Type, &train.Capacity, &train.MaxSpeed, &train.FuelEfficiency, &train.MaintenanceCostPerKm, &train.IsOperational, &train.CreatedAt, &train.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trains, nil
}

// GetOperationalTrains 返回所有可以参与调度优化的列车
func (r *Repository) GetOperationalTrains() ([]*domain.Train, error) {
	query := `
		SELECT id, train_number, name, type, capacity, max_speed, fuel_efficiency, maintenance_cost_per_km, is_operational, created_at, version
		FROM trains
		WHERE is_operational = true
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]*domain.Train, 0)
	for rows.Next() {
		train := &domain.Train{}
		dst := []any{&train.ID, &train.TrainNumber, &train.Name, &train.Type, &train.Capacity, &train.MaxSpeed, &train.FuelEfficiency, &train.MaintenanceCostPerKm, &train.IsOperational, &train.CreatedAt, &train.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trains, nil
}

func (r *Repository) UpdateTrain(train *domain.Train) error {
	query := `
		UPDATE trains
		SET
			name = $1,
			type = $2,
			capacity = $3,
			max_speed = $4,
			fuel_efficiency = $5,
			maintenance_cost_per_km = $6,
			is_operational = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING train_number, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{train.Name, train.Type, train.Capacity, train.MaxSpeed, train.FuelEfficiency, train.MaintenanceCostPerKm, train.IsOperational, train.ID, train.Version}
	dst := []any{&train.TrainNumber, &train.CreatedAt, &train.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTrain(id int64) error {
	query := `
		DELETE FROM trains WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
