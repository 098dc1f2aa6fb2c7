package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	taskChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, taskCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		taskChannel: taskCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.observeRequest)

	// prometheus 指标，供内网抓取，不走业务中间件之外的认证
	h.Mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		// 用户管理只对管理员开放
		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/trains", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateTrain)
			r.Get("/", h.GetAllTrains)
			r.Get("/operational", h.GetOperationalTrains)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.train)
				r.Get("/", h.GetTrain)
				r.Get("/schedules", h.GetTrainSchedules)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateTrain)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteTrain)
			})
		})

		r.Route("/routes", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateRoute)
			r.Get("/", h.GetAllRoutes)
			r.Get("/active", h.GetActiveRoutes)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.route)
				r.Get("/", h.GetRoute)
				r.Get("/schedules", h.GetRouteSchedules)
				r.Get("/performance", h.GetRoutePerformance)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateRoute)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteRoute)
			})
		})

		// 调度员和管理员都可以维护时刻表
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", h.CreateSchedule)
			r.Get("/", h.GetAllSchedules)
			r.Get("/today", h.GetTodaySchedules)
			r.Get("/upcoming", h.GetUpcomingSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedule)
				r.Get("/", h.GetSchedule)
				r.Patch("/", h.UpdateSchedule)
				r.Delete("/", h.DeleteSchedule)
			})
		})

		r.Route("/optimization-tasks", func(r chi.Router) {
			r.Post("/", h.CreateOptimizationTask)
			r.Get("/", h.GetOptimizationTasks)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Use(h.optimizationTask)
				r.Use(h.preventAccessOthersTask) // 调度员只能查看和操作自己创建的任务
				r.Get("/", h.GetOptimizationTask)
				r.Post("/restart", h.RestartOptimizationTask)
				r.Delete("/", h.DeleteOptimizationTask)
			})
		})

		r.Route("/performance-metrics", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreatePerformanceMetric)
			r.Get("/", h.GetPerformanceMetrics)
			r.Get("/dashboard", h.GetDashboardMetrics)
			r.Get("/trends", h.GetMetricTrends)
			r.Get("/summary", h.GetMetricSummaries)
		})
	})
}
