package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func (h *Handler) GetAllTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.repository.GetAllTrains()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取列车列表成功", trains)
}

func (h *Handler) GetOperationalTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.repository.GetOperationalTrains()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取运营中列车列表成功", trains)
}

func (h *Handler) CreateTrain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainNumber          string  `json:"trainNumber" validate:"required"`
		Name                 string  `json:"name" validate:"required"`
		Type                 string  `json:"type" validate:"required,oneof=高速 特快 普速 货运"`
		Capacity             int32   `json:"capacity" validate:"required,gt=0"`
		MaxSpeed             int32   `json:"maxSpeed" validate:"required,gt=0"`
		FuelEfficiency       float64 `json:"fuelEfficiency" validate:"required,gt=0"`
		MaintenanceCostPerKm float64 `json:"maintenanceCostPerKm" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	train := &domain.Train{
		TrainNumber:          req.TrainNumber,
		Name:                 req.Name,
		Type:                 domain.TrainType(req.Type),
		Capacity:             req.Capacity,
		MaxSpeed:             req.MaxSpeed,
		FuelEfficiency:       req.FuelEfficiency,
		MaintenanceCostPerKm: req.MaintenanceCostPerKm,
		IsOperational:        true,
	}

	if err := h.repository.CreateTrain(train); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "trains_train_number_key":
				h.badRequest(w, r, errors.New("车次号已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "列车创建成功", train)
}

func (h *Handler) GetTrain(w http.ResponseWriter, r *http.Request) {
	train := r.Context().Value(TrainCtx).(*domain.Train)
	h.successResponse(w, r, "获取列车信息成功", train)
}

func (h *Handler) GetTrainSchedules(w http.ResponseWriter, r *http.Request) {
	train := r.Context().Value(TrainCtx).(*domain.Train)

	schedules, err := h.repository.GetSchedulesByTrain(train.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取列车时刻表成功", schedules)
}

func (h *Handler) UpdateTrain(w http.ResponseWriter, r *http.Request) {
	// 车次号是列车的业务标识，创建后不允许修改
	var req struct {
		Name                 *string  `json:"name"`
		Type                 *string  `json:"type" validate:"omitempty,oneof=高速 特快 普速 货运"`
		Capacity             *int32   `json:"capacity" validate:"omitempty,gt=0"`
		MaxSpeed             *int32   `json:"maxSpeed" validate:"omitempty,gt=0"`
		FuelEfficiency       *float64 `json:"fuelEfficiency" validate:"omitempty,gt=0"`
		MaintenanceCostPerKm *float64 `json:"maintenanceCostPerKm" validate:"omitempty,gte=0"`
		IsOperational        *bool    `json:"isOperational"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	train := r.Context().Value(TrainCtx).(*domain.Train)

	if req.Name != nil {
		train.Name = *req.Name
	}
	if req.Type != nil {
		train.Type = domain.TrainType(*req.Type)
	}
	if req.Capacity != nil {
		train.Capacity = *req.Capacity
	}
	if req.MaxSpeed != nil {
		train.MaxSpeed = *req.MaxSpeed
	}
	if req.FuelEfficiency != nil {
		train.FuelEfficiency = *req.FuelEfficiency
	}
	if req.MaintenanceCostPerKm != nil {
		train.MaintenanceCostPerKm = *req.MaintenanceCostPerKm
	}
	if req.IsOperational != nil {
		train.IsOperational = *req.IsOperational
	}

	if err := h.repository.UpdateTrain(train); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新列车信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新列车信息成功", train)
}

func (h *Handler) DeleteTrain(w http.ResponseWriter, r *http.Request) {
	train := r.Context().Value(TrainCtx).(*domain.Train)

	if err := h.repository.DeleteTrain(train.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "schedules_train_id_fkey":
				h.badRequest(w, r, errors.New("该列车还有关联的时刻表，无法删除"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除列车成功", nil)
}
