package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (h *Handler) GetAllRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.repository.GetAllRoutes()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取线路列表成功", routes)
}

func (h *Handler) GetActiveRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.repository.GetActiveRoutes()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取启用中线路列表成功", routes)
}

func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string  `json:"name" validate:"required"`
		StartStation        string  `json:"startStation" validate:"required"`
		EndStation          string  `json:"endStation" validate:"required,nefield=StartStation"`
		Distance            float64 `json:"distance" validate:"required,gt=0"`
		EstimatedTravelTime int32   `json:"estimatedTravelTime" validate:"required,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	route := &domain.Route{
		Name:                req.Name,
		StartStation:        req.StartStation,
		EndStation:          req.EndStation,
		Distance:            req.Distance,
		EstimatedTravelTime: req.EstimatedTravelTime,
		IsActive:            true,
	}

	if err := h.repository.CreateRoute(route); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "routes_name_key":
				h.badRequest(w, r, errors.New("线路名称已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "线路创建成功", route)
}

func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	route := r.Context().Value(RouteCtx).(*domain.Route)
	h.successResponse(w, r, "获取线路信息成功", route)
}

func (h *Handler) GetRouteSchedules(w http.ResponseWriter, r *http.Request) {
	route := r.Context().Value(RouteCtx).(*domain.Route)

	schedules, err := h.repository.GetSchedulesByRoute(route.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取线路时刻表成功", schedules)
}

func (h *Handler) GetRoutePerformance(w http.ResponseWriter, r *http.Request) {
	route := r.Context().Value(RouteCtx).(*domain.Route)

	// 统计天数默认为最近 30 天
	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.errorResponse(w, r, "统计天数无效")
			return
		}
		days = parsed
	}

	performance, err := h.repository.GetRoutePerformance(route.ID, int32(days))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取线路表现成功", performance)
}

func (h *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                *string  `json:"name"`
		StartStation        *string  `json:"startStation"`
		EndStation          *string  `json:"endStation"`
		Distance            *float64 `json:"distance" validate:"omitempty,gt=0"`
		EstimatedTravelTime *int32   `json:"estimatedTravelTime" validate:"omitempty,gt=0"`
		IsActive            *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	route := r.Context().Value(RouteCtx).(*domain.Route)

	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.StartStation != nil {
		route.StartStation = *req.StartStation
	}
	if req.EndStation != nil {
		route.EndStation = *req.EndStation
	}
	if req.Distance != nil {
		route.Distance = *req.Distance
	}
	if req.EstimatedTravelTime != nil {
		route.EstimatedTravelTime = *req.EstimatedTravelTime
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	if route.StartStation == route.EndStation {
		h.errorResponse(w, r, "起点站和终点站不能相同")
		return
	}

	if err := h.repository.UpdateRoute(route); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "routes_name_key":
				h.badRequest(w, r, errors.New("线路名称已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新线路信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新线路信息成功", route)
}

func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	route := r.Context().Value(RouteCtx).(*domain.Route)

	if err := h.repository.DeleteRoute(route.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "schedules_route_id_fkey":
				h.badRequest(w, r, errors.New("该线路还有关联的时刻表，无法删除"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除线路成功", nil)
}
