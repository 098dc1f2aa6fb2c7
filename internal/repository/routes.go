package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (r *Repository) CreateRoute(route *domain.Route) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO routes (name, start_station, end_station, distance, estimated_travel_time, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{route.Name, route.StartStation, route.EndStation, route.Distance, route.EstimatedTravelTime, route.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&route.ID, &route.CreatedAt, &route.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRouteByID(id int64) (*domain.Route, error) {
	query := `
		SELECT name, start_station, end_station, distance, estimated_travel_time, is_active, created_at, version
		FROM routes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	route := &domain.Route{
		ID: id,
	}

	dst := []any{&route.Name, &route.StartStation, &route.EndStation, &route.Distance, &route.EstimatedTravelTime, &route.IsActive, &route.CreatedAt, &route.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return route, nil
}

func (r *Repository) GetAllRoutes() ([]*domain.Route, error) {
	query := `
		SELECT id, name, start_station, end_station, distance, estimated_travel_time, is_active, created_at, version
		FROM routes
		ORDER BY name
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0)
	for rows.Next() {
		route := &domain.Route{}
		dst := []any{&route.ID, &route.Name, &route.StartStation, &route.EndStation, &route.Distance, &route.EstimatedTravelTime, &route.IsActive, &route.CreatedAt, &route.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}

// GetActiveRoutes 返回所有可以参与调度优化的线路
func (r *Repository) GetActiveRoutes() ([]*domain.Route, error) {
	query := `
		SELECT id, name, start_station, end_station, distance, estimated_travel_time, is_active, created_at, version
		FROM routes
		WHERE is_active = true
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0)
	for rows.Next() {
		route := &domain.Route{}
		dst := []any{&route.ID, &route.Name, &route.StartStation, &route.EndStation, &route.Distance, &route.EstimatedTravelTime, &route.IsActive, &route.CreatedAt, &route.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}

func (r *Repository) UpdateRoute(route *domain.Route) error {
	query := `
		UPDATE routes
		SET
			name = $1,
			start_station = $2,
			end_station = $3,
			distance = $4,
			estimated_travel_time = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{route.Name, route.StartStation, route.EndStation, route.Distance, route.EstimatedTravelTime, route.IsActive, route.ID, route.Version}
	dst := []any{&route.CreatedAt, &route.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRoute(id int64) error {
	query := `
		DELETE FROM routes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
