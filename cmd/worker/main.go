package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/dqn"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
	"github.com/wneessen/go-mail"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 注册 prometheus 指标
	 **********************************************/
	metrics.RegisterDefault()

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancelPing()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	/**********************************************
	 * 创建 repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 准备模型目录
	 **********************************************/
	// 强化学习算法会在这个目录中加载和保存模型
	if err := os.MkdirAll(cfg.DQN.ModelDir, 0o755); err != nil {
		logger.Error("无法创建模型目录", "error", err)
		return
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	// 声明任务队列
	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.TaskQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("无法声明任务队列", "error", err)
		return
	}

	// 声明重试队列，消息在这里等待一段时间后自动回到任务队列
	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.RetryQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-message-ttl":             int32(cfg.RabbitMQ.RetryDelay * 1000),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": cfg.RabbitMQ.TaskQueue,
		},
	)
	if err != nil {
		logger.Error("无法声明重试队列", "error", err)
		return
	}

	// 优化任务计算量大，每次只预取一条消息
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", "error", err)
		return
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * 启动指标服务
	 **********************************************/
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Worker.MetricsPort), mux); err != nil {
			logger.Error("指标服务退出", "error", err)
		}
	}()

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		cfg.RabbitMQ.TaskQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("无法消费消息", "error", err)
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				handleTask(cfg, repo, rdb, ch, msg)
			}
		}
	}()

	/**********************************************
	 * 启动定时任务
	 **********************************************/
	runPeriodically(ctx, &wg, "collect_metrics", time.Duration(cfg.Worker.MetricsInterval)*time.Second, func() error {
		return collectPerformanceMetrics(repo)
	})
	runPeriodically(ctx, &wg, "cleanup", time.Duration(cfg.Worker.CleanupInterval)*time.Second, func() error {
		return cleanupHistory(cfg, repo)
	})
	runPeriodically(ctx, &wg, "weekly_report", time.Duration(cfg.Worker.ReportInterval)*time.Second, func() error {
		return sendWeeklyReport(cfg, repo)
	})

	// 等待 CTRL+C 信号
	logger.Info("worker 已启动，等待优化任务...")
	<-sigChan

	// 优雅退出
	logger.Info("正在关闭 worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	logger.Info("worker 已成功关闭")
}

// handleTask 执行一条优化任务消息并确认消费结果
func handleTask(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, ch *amqp.Channel, msg amqp.Delivery) {
	// 对任务信息反序列化
	message := domain.TaskMessage{}
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		slog.Error("任务信息反序列化失败", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	// 加锁防止同一个任务被多个 worker 同时执行
	lockKey := fmt.Sprintf("optimization_task_lock_%s", message.TaskID)

	lockCtx, cancelLock := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancelLock()

	locked, err := rdb.SetNX(lockCtx, lockKey, "1", time.Duration(cfg.Redis.LockExpiration)*time.Second).Result()
	if err != nil {
		slog.Error("获取任务锁失败", "taskID", message.TaskID, "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if !locked {
		slog.Warn("任务正在被其他 worker 执行，跳过", "taskID", message.TaskID)
		_ = msg.Ack(false)
		return
	}
	defer func() {
		// 任务可能执行很久，释放锁时要用新的上下文
		delCtx, cancelDel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		defer cancelDel()

		if err := rdb.Del(delCtx, lockKey).Err(); err != nil {
			slog.Error("释放任务锁失败", "taskID", message.TaskID, "error", err)
		}
	}()

	// 任务完成后消息仍可能因为 worker 崩溃等原因被重复投递，先确认任务还需要执行
	task, err := repo.GetOptimizationTaskByTaskID(message.TaskID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			slog.Warn("任务不存在，跳过", "taskID", message.TaskID)
			_ = msg.Ack(false)
		default:
			slog.Error("获取任务信息失败", "taskID", message.TaskID, "error", err)
			_ = msg.Nack(false, true)
		}
		return
	}
	if task.Status == domain.TaskStatusCompleted {
		slog.Warn("任务已经完成，跳过", "taskID", message.TaskID)
		_ = msg.Ack(false)
		return
	}

	attempts := message.Attempts + 1
	if err := repo.MarkOptimizationTaskRunning(message.TaskID, attempts); err != nil {
		slog.Error("更新任务状态失败", "taskID", message.TaskID, "error", err)
		_ = msg.Nack(false, true)
		return
	}

	slog.Info("开始执行优化任务", "taskID", message.TaskID, "type", message.Type, "attempts", attempts)
	metrics.TasksInFlight.Inc()
	defer metrics.TasksInFlight.Dec()

	start := time.Now()
	results, err := runOptimization(cfg, repo, message)
	if err != nil {
		metrics.OptimizationRuns.WithLabelValues(string(message.Type), "failed").Inc()

		if err := repo.FailOptimizationTask(message.TaskID, err.Error()); err != nil {
			slog.Error("记录任务失败状态失败", "taskID", message.TaskID, "error", err)
		}

		// 没到最大尝试次数就丢进重试队列，等待一段时间后重新执行
		if attempts < int32(cfg.RabbitMQ.MaxAttempts) {
			message.Attempts = attempts
			if err := publishRetry(cfg, ch, message); err != nil {
				slog.Error("发送重试消息失败", "taskID", message.TaskID, "error", err)
			} else {
				slog.Info("任务已进入重试队列", "taskID", message.TaskID, "attempts", attempts)
			}
		} else {
			slog.Error("任务多次执行失败，不再重试", "taskID", message.TaskID, "attempts", attempts)
		}

		_ = msg.Ack(false)
		return
	}

	// 数据不足这类业务性失败不做重试，直接标记任务失败
	failure := struct {
		Error string `json:"error"`
	}{}
	if err := json.Unmarshal(results, &failure); err == nil && failure.Error != "" {
		metrics.OptimizationRuns.WithLabelValues(string(message.Type), "failed").Inc()

		if err := repo.FailOptimizationTask(message.TaskID, failure.Error); err != nil {
			slog.Error("记录任务失败状态失败", "taskID", message.TaskID, "error", err)
		}

		_ = msg.Ack(false)
		return
	}

	if err := repo.CompleteOptimizationTask(message.TaskID, results); err != nil {
		slog.Error("写入优化结果失败", "taskID", message.TaskID, "error", err)
		_ = msg.Nack(false, true)
		return
	}

	duration := time.Since(start)
	metrics.OptimizationRuns.WithLabelValues(string(message.Type), "completed").Inc()
	metrics.OptimizationDuration.WithLabelValues(string(message.Type)).Observe(duration.Seconds())
	slog.Info("优化任务执行完成", "taskID", message.TaskID, "duration", duration)

	_ = msg.Ack(false)
}

// runOptimization 根据任务类型选择算法并执行，返回序列化后的优化结果
func runOptimization(cfg *config.Config, repo *repository.Repository, message domain.TaskMessage) ([]byte, error) {
	trains, err := repo.GetOperationalTrains()
	if err != nil {
		return nil, fmt.Errorf("获取列车列表失败: %w", err)
	}
	routes, err := repo.GetActiveRoutes()
	if err != nil {
		return nil, fmt.Errorf("获取线路列表失败: %w", err)
	}

	if message.Type == domain.TaskTypeDQN {
		parameters := &dqn.Parameters{
			Episodes: int32(cfg.DQN.Episodes),
			MaxSteps: int32(cfg.DQN.MaxSteps),
			Seed:     message.Parameters.Seed,
		}
		if message.Parameters.Episodes > 0 {
			parameters.Episodes = message.Parameters.Episodes
		}
		if message.Parameters.MaxSteps > 0 {
			parameters.MaxSteps = message.Parameters.MaxSteps
		}

		agent, err := dqn.New(parameters, trains, routes, filepath.Join(cfg.DQN.ModelDir, "dqn_transport_model.gob"))
		if err != nil {
			return nil, err
		}

		return json.Marshal(agent.Run())
	}

	ga, err := optimizer.New(geneticParameters(cfg, message), trains, routes)
	if err != nil {
		return nil, err
	}

	return json.Marshal(ga.Run())
}

// geneticParameters 组装遗传算法参数，任务中为零值的字段回退到配置中的默认值
func geneticParameters(cfg *config.Config, message domain.TaskMessage) *optimizer.Parameters {
	parameters := &optimizer.Parameters{
		PopulationSize: int32(cfg.Optimizer.PopulationSize),
		MaxGenerations: int32(cfg.Optimizer.MaxGenerations),
		CrossoverRate:  cfg.Optimizer.CrossoverRate,
		MutationRate:   cfg.Optimizer.MutationRate,
		TimeHorizon:    int32(cfg.Optimizer.TimeHorizon),
		Seed:           message.Parameters.Seed,
	}

	if message.Parameters.PopulationSize > 0 {
		parameters.PopulationSize = message.Parameters.PopulationSize
	}
	if message.Parameters.MaxGenerations > 0 {
		parameters.MaxGenerations = message.Parameters.MaxGenerations
	}
	if message.Parameters.CrossoverRate > 0 {
		parameters.CrossoverRate = message.Parameters.CrossoverRate
	}
	if message.Parameters.MutationRate > 0 {
		parameters.MutationRate = message.Parameters.MutationRate
	}
	if message.Parameters.TimeHorizon > 0 {
		parameters.TimeHorizon = message.Parameters.TimeHorizon
	}

	// 权重依次对应燃油消耗、准点率、运营成本和载客率
	// multi_objective 不设置权重，由算法对四个目标均分
	switch message.Type {
	case domain.TaskTypeFuel:
		parameters.Weights = [4]float64{0.55, 0.15, 0.15, 0.15}
	case domain.TaskTypeSchedule:
		parameters.Weights = [4]float64{0.15, 0.55, 0.15, 0.15}
	case domain.TaskTypeRoute:
		parameters.Weights = [4]float64{0.15, 0.15, 0.15, 0.55}
	}

	return parameters
}

// publishRetry 把执行失败的任务送入重试队列，TTL 到期后消息会自动回到任务队列
func publishRetry(cfg *config.Config, ch *amqp.Channel, message domain.TaskMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化任务信息失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		"",
		cfg.RabbitMQ.RetryQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// runPeriodically 在独立的 goroutine 中按固定间隔执行任务，直到 ctx 被取消
func runPeriodically(ctx context.Context, wg *sync.WaitGroup, name string, interval time.Duration, job func() error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := job(); err != nil {
					slog.Error("定时任务执行失败", "job", name, "error", err)
					metrics.PeriodicJobRuns.WithLabelValues(name, "failed").Inc()
					continue
				}
				metrics.PeriodicJobRuns.WithLabelValues(name, "completed").Inc()
			}
		}
	}()
}

// collectPerformanceMetrics 采集一轮运行指标
// 车载传感器数据尚未接入，先按经验范围生成，保证仪表盘和趋势图有数据
func collectPerformanceMetrics(repo *repository.Repository) error {
	trains, err := repo.GetOperationalTrains()
	if err != nil {
		return fmt.Errorf("获取列车列表失败: %w", err)
	}
	routes, err := repo.GetActiveRoutes()
	if err != nil {
		return fmt.Errorf("获取线路列表失败: %w", err)
	}

	now := time.Now()
	for _, train := range trains {
		fuel := &domain.PerformanceMetric{
			Type:       domain.MetricTypeFuelConsumption,
			Value:      8 + rand.Float64()*7, // 8~15 公里/升
			Unit:       "km/liter",
			TrainID:    &train.ID,
			MeasuredAt: now,
		}
		if err := repo.CreatePerformanceMetric(fuel); err != nil {
			return fmt.Errorf("写入燃油指标失败: %w", err)
		}

		onTime := &domain.PerformanceMetric{
			Type:       domain.MetricTypeOnTimePerformance,
			Value:      85 + rand.Float64()*13, // 85~98 个百分点
			Unit:       "percentage",
			TrainID:    &train.ID,
			MeasuredAt: now,
		}
		if err := repo.CreatePerformanceMetric(onTime); err != nil {
			return fmt.Errorf("写入准点指标失败: %w", err)
		}
	}

	for _, route := range routes {
		utilization := &domain.PerformanceMetric{
			Type:       domain.MetricTypeRouteUtilization,
			Value:      60 + rand.Float64()*30, // 60~90 个百分点
			Unit:       "percentage",
			RouteID:    &route.ID,
			MeasuredAt: now,
		}
		if err := repo.CreatePerformanceMetric(utilization); err != nil {
			return fmt.Errorf("写入线路利用率指标失败: %w", err)
		}
	}

	return nil
}

// cleanupHistory 删除超过保留期的已完成任务和历史指标
func cleanupHistory(cfg *config.Config, repo *repository.Repository) error {
	cutoff := time.Now().AddDate(0, 0, -cfg.Worker.MetricsRetentionDays)

	deletedTasks, err := repo.DeleteCompletedTasksBefore(cutoff)
	if err != nil {
		return fmt.Errorf("清理优化任务失败: %w", err)
	}

	deletedMetrics, err := repo.DeletePerformanceMetricsBefore(cutoff)
	if err != nil {
		return fmt.Errorf("清理性能指标失败: %w", err)
	}

	metrics.CleanupDeletedRows.Add(float64(deletedTasks + deletedMetrics))
	slog.Info("历史数据清理完成", "tasks", deletedTasks, "metrics", deletedMetrics)
	return nil
}

// sendWeeklyReport 汇总仪表盘指标生成运营周报
// 配置了收件人和 SMTP 时通过邮件发送，否则只写入日志
func sendWeeklyReport(cfg *config.Config, repo *repository.Repository) error {
	dashboard, err := repo.GetDashboardMetrics()
	if err != nil {
		return fmt.Errorf("获取汇总指标失败: %w", err)
	}

	report := fmt.Sprintf(
		"列车调度优化系统运营周报\n"+
			"--------------------------------\n"+
			"运营列车数: %d\n"+
			"启用线路数: %d\n"+
			"今日排班车次: %d\n"+
			"平均燃油效率: %.2f 公里/升\n"+
			"平均准点率: %.1f%%\n"+
			"累计载客人次: %d\n"+
			"预计节省成本: %.2f 元\n"+
			"已完成优化任务数: %d\n"+
			"生成时间: %s\n",
		dashboard.TotalTrains,
		dashboard.ActiveRoutes,
		dashboard.ScheduledTrips,
		dashboard.AvgFuelEfficiency,
		dashboard.OnTimePerformance,
		dashboard.TotalPassengers,
		dashboard.CostSavings,
		dashboard.OptimizationTasksCompleted,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	if cfg.Email.ReportRecipient == "" || cfg.Email.SMTP.Host == "" {
		slog.Info("生成运营周报", "report", report)
		return nil
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		return fmt.Errorf("创建邮件客户端失败: %w", err)
	}
	defer client.Close()

	msg := mail.NewMsg()
	if err := msg.From(cfg.Email.SMTP.Username); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := msg.To(cfg.Email.ReportRecipient); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}
	msg.Subject("列车调度优化系统 - 运营周报")
	msg.SetBodyString(mail.TypeTextPlain, report)

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送周报失败: %w", err)
	}

	slog.Info("运营周报已发送", "to", cfg.Email.ReportRecipient)
	return nil
}
