package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		// ReportRecipient 为空时周报只写入日志，不发送邮件
		ReportRecipient string `env:"REPORT_RECIPIENT"`
		UserDomain      string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP            struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		TaskQueue      string `env:"TASK_QUEUE" envDefault:"optimization_queue"`
		RetryQueue     string `env:"RETRY_QUEUE" envDefault:"optimization_retry_queue"`
		RetryDelay     int    `env:"RETRY_DELAY" envDefault:"60"` // 秒
		MaxAttempts    int    `env:"MAX_ATTEMPTS" envDefault:"3"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host            string `env:"HOST" envDefault:"localhost"`
		Port            int    `env:"PORT" envDefault:"6379"`
		Password        string `env:"PASSWORD,required"`
		ConnectTimeout  int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		CacheExpiration int    `env:"CACHE_EXPIRATION" envDefault:"60"` // 仪表盘缓存
		LockExpiration  int    `env:"LOCK_EXPIRATION" envDefault:"3600"`
	} `envPrefix:"REDIS_"`
	Optimizer struct {
		PopulationSize int     `env:"POPULATION_SIZE" envDefault:"50"`
		MaxGenerations int     `env:"MAX_GENERATIONS" envDefault:"100"`
		CrossoverRate  float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0.1"`
		TimeHorizon    int     `env:"TIME_HORIZON" envDefault:"24"` // 小时
	} `envPrefix:"OPTIMIZER_"`
	DQN struct {
		Episodes int    `env:"EPISODES" envDefault:"50"`
		MaxSteps int    `env:"MAX_STEPS" envDefault:"100"`
		ModelDir string `env:"MODEL_DIR" envDefault:"./models"`
	} `envPrefix:"DQN_"`
	Worker struct {
		MetricsPort          string `env:"METRICS_PORT" envDefault:"3001"`
		MetricsInterval      int    `env:"METRICS_INTERVAL" envDefault:"300"`   // 5 分钟
		CleanupInterval      int    `env:"CLEANUP_INTERVAL" envDefault:"86400"` // 24 小时
		MetricsRetentionDays int    `env:"METRICS_RETENTION_DAYS" envDefault:"30"`
		ReportInterval       int    `env:"REPORT_INTERVAL" envDefault:"604800"` // 7 天
	} `envPrefix:"WORKER_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
