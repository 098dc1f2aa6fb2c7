package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://localhost:5432/test")
	t.Setenv("INITIAL_ADMIN_PASSWORD", "admin-password")
	t.Setenv("INITIAL_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SEED_USER_PASSWORD", "seed-password")
	t.Setenv("RABBITMQ_DSN", "amqp://localhost:5672")
	t.Setenv("REDIS_PASSWORD", "redis-password")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("期望默认端口为 3000，实际为 %q", cfg.Server.Port)
	}
	if cfg.RabbitMQ.TaskQueue != "optimization_queue" {
		t.Errorf("期望默认任务队列为 optimization_queue，实际为 %q", cfg.RabbitMQ.TaskQueue)
	}
	if cfg.RabbitMQ.MaxAttempts != 3 {
		t.Errorf("期望默认最大尝试次数为 3，实际为 %d", cfg.RabbitMQ.MaxAttempts)
	}
	if cfg.Optimizer.PopulationSize != 50 || cfg.Optimizer.MaxGenerations != 100 {
		t.Errorf("遗传算法默认参数不正确: %+v", cfg.Optimizer)
	}
	if cfg.DQN.Episodes != 50 || cfg.DQN.ModelDir != "./models" {
		t.Errorf("强化学习默认参数不正确: %+v", cfg.DQN)
	}
	if cfg.Worker.MetricsRetentionDays != 30 {
		t.Errorf("期望默认保留天数为 30，实际为 %d", cfg.Worker.MetricsRetentionDays)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("OPTIMIZER_CROSSOVER_RATE", "0.9")
	t.Setenv("WORKER_METRICS_INTERVAL", "60")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("期望端口为 8080，实际为 %q", cfg.Server.Port)
	}
	if cfg.Optimizer.CrossoverRate != 0.9 {
		t.Errorf("期望交叉概率为 0.9，实际为 %v", cfg.Optimizer.CrossoverRate)
	}
	if cfg.Worker.MetricsInterval != 60 {
		t.Errorf("期望采集间隔为 60，实际为 %d", cfg.Worker.MetricsInterval)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv 会在测试结束后恢复原值，这里再取消设置来模拟变量缺失
	os.Unsetenv("DATABASE_DSN")

	if _, err := LoadConfig(); err == nil {
		t.Error("缺少必填配置时应该返回错误")
	}
}
