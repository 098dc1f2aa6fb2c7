package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/utils"
)

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	filter := repository.ScheduleFilter{}

	query := r.URL.Query()
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
	if cancelledParam := query.Get("cancelled"); cancelledParam != "" {
		cancelled, err := strconv.ParseBool(cancelledParam)
		if err != nil {
			h.errorResponse(w, r, "停运筛选条件无效")
			return
		}
		filter.Cancelled = &cancelled
	}

	schedules, err := h.repository.GetSchedules(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时刻表列表成功", schedules)
}

func (h *Handler) GetTodaySchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repository.GetTodaySchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取今日时刻表成功", schedules)
}

func (h *Handler) GetUpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	// 默认返回最近的 10 条
	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 || parsed > 100 {
			h.errorResponse(w, r, "数量限制无效")
			return
		}
		limit = parsed
	}

	schedules, err := h.repository.GetUpcomingSchedules(int32(limit))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取即将发车的时刻表成功", schedules)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainID       int64     `json:"trainID" validate:"required"`
		RouteID       int64     `json:"routeID" validate:"required"`
		DepartureTime time.Time `json:"departureTime" validate:"required"`
		ArrivalTime   time.Time `json:"arrivalTime" validate:"required"`
		PassengerLoad int32     `json:"passengerLoad" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 检查列车是否存在且在运营中
	train, err := h.repository.GetTrainByID(req.TrainID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "列车不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !train.IsOperational {
		h.errorResponse(w, r, "列车未在运营中，无法编排时刻表")
		return
	}

	// 检查线路是否存在且已启用
	route, err := h.repository.GetRouteByID(req.RouteID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "线路不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !route.IsActive {
		h.errorResponse(w, r, "线路未启用，无法编排时刻表")
		return
	}

	schedule := &domain.Schedule{
		TrainID:       req.TrainID,
		RouteID:       req.RouteID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		PassengerLoad: req.PassengerLoad,
	}

	if err := utils.ValidateScheduleTime(schedule); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateScheduleLoad(schedule, train); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateSchedule(schedule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "时刻表创建成功", schedule)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	h.successResponse(w, r, "获取时刻表成功", schedule)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainID       *int64     `json:"trainID"`
		RouteID       *int64     `json:"routeID"`
		DepartureTime *time.Time `json:"departureTime"`
		ArrivalTime   *time.Time `json:"arrivalTime"`
		PassengerLoad *int32     `json:"passengerLoad" validate:"omitempty,gte=0"`
		IsCancelled   *bool      `json:"isCancelled"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if req.TrainID != nil {
		schedule.TrainID = *req.TrainID
	}
	if req.RouteID != nil {
		schedule.RouteID = *req.RouteID
	}
	if req.DepartureTime != nil {
		schedule.DepartureTime = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		schedule.ArrivalTime = *req.ArrivalTime
	}
	if req.PassengerLoad != nil {
		schedule.PassengerLoad = *req.PassengerLoad
	}
	if req.IsCancelled != nil {
		schedule.IsCancelled = *req.IsCancelled
	}

	// 更新后的列车可能和原来不同，重新检查存在性和容量
	train, err := h.repository.GetTrainByID(schedule.TrainID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "列车不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.RouteID != nil {
		if _, err := h.repository.GetRouteByID(schedule.RouteID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "线路不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	if err := utils.ValidateScheduleTime(schedule); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateScheduleLoad(schedule, train); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateSchedule(schedule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新时刻表失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新时刻表成功", schedule)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if err := h.repository.DeleteSchedule(schedule.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除时刻表成功", nil)
}
