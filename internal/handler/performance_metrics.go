package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
)

const dashboardCacheKey = "dashboard_metrics"

func (h *Handler) CreatePerformanceMetric(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type       string     `json:"type" validate:"required,oneof=fuel_consumption on_time_performance passenger_satisfaction cost_efficiency route_utilization"`
		Value      float64    `json:"value" validate:"required"`
		Unit       string     `json:"unit" validate:"required"`
		TrainID    *int64     `json:"trainID"`
		RouteID    *int64     `json:"routeID"`
		ScheduleID *int64     `json:"scheduleID"`
		MeasuredAt *time.Time `json:"measuredAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	metric := &domain.PerformanceMetric{
		Type:       domain.MetricType(req.Type),
		Value:      req.Value,
		Unit:       req.Unit,
		TrainID:    req.TrainID,
		RouteID:    req.RouteID,
		ScheduleID: req.ScheduleID,
		MeasuredAt: time.Now(),
	}
	if req.MeasuredAt != nil {
		metric.MeasuredAt = *req.MeasuredAt
	}

	if err := h.repository.CreatePerformanceMetric(metric); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "performance_metrics_train_id_fkey":
				h.badRequest(w, r, errors.New("列车不存在"))
			case pgErr.ConstraintName == "performance_metrics_route_id_fkey":
				h.badRequest(w, r, errors.New("线路不存在"))
			case pgErr.ConstraintName == "performance_metrics_schedule_id_fkey":
				h.badRequest(w, r, errors.New("时刻表不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "性能指标记录成功", metric)
}

func (h *Handler) GetPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	filter := repository.MetricFilter{
		Limit: 100,
	}

	query := r.URL.Query()
	if metricType := query.Get("type"); metricType != "" {
		if !slices.Contains(domain.MetricTypes, domain.MetricType(metricType)) {
			h.errorResponse(w, r, "指标类型无效")
			return
		}
		filter.Type = domain.MetricType(metricType)
	}
	if trainIDParam := query.Get("trainID"); trainIDParam != "" {
		trainID, err := strconv.ParseInt(trainIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "列车ID无效")
			return
		}
		filter.TrainID = trainID
	}
	if routeIDParam := query.Get("routeID"); routeIDParam != "" {
		routeID, err := strconv.ParseInt(routeIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "线路ID无效")
			return
		}
		filter.RouteID = routeID
	}
	if daysParam := query.Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days <= 0 || days > 365 {
			h.errorResponse(w, r, "统计天数无效")
			return
		}
		filter.Since = time.Now().AddDate(0, 0, -days)
	}
	if limitParam := query.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit <= 0 || limit > 1000 {
			h.errorResponse(w, r, "数量限制无效")
			return
		}
		filter.Limit = int32(limit)
	}

	metrics, err := h.repository.GetPerformanceMetrics(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取性能指标成功", metrics)
}

func (h *Handler) GetDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	// 仪表盘的统计查询比较重，先尝试读取缓存
	cached, err := h.redisClient.Get(ctx, dashboardCacheKey).Result()
	if err == nil {
		metrics := &domain.DashboardMetrics{}
		if err := json.Unmarshal([]byte(cached), metrics); err == nil {
			h.successResponse(w, r, "获取仪表盘数据成功", metrics)
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		// redis 不可用时直接回源查询
		slog.Warn("读取仪表盘缓存失败", "error", err)
	}

	metrics, err := h.repository.GetDashboardMetrics()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.redisClient.Set(ctx, dashboardCacheKey, data, time.Duration(h.config.Redis.CacheExpiration)*time.Second).Err(); err != nil {
		// 缓存写入失败不影响本次返回
		slog.Warn("写入仪表盘缓存失败", "error", err)
	}

	h.successResponse(w, r, "获取仪表盘数据成功", metrics)
}

func (h *Handler) GetMetricTrends(w http.ResponseWriter, r *http.Request) {
	metricType := domain.MetricTypeFuelConsumption
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		if !slices.Contains(domain.MetricTypes, domain.MetricType(typeParam)) {
			h.errorResponse(w, r, "指标类型无效")
			return
		}
		metricType = domain.MetricType(typeParam)
	}

	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.errorResponse(w, r, "统计天数无效")
			return
		}
		days = parsed
	}

	trends, err := h.repository.GetMetricTrends(metricType, int32(days))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取指标趋势成功", trends)
}

func (h *Handler) GetMetricSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repository.GetMetricSummaries()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取指标汇总成功", summaries)
}
