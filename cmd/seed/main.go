package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/seed"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机列车, 3: 插入随机线路, 4: 插入随机时刻表, 5: 插入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的列车数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				train := utils.GenerateRandomTrain()
				if err := repo.CreateTrain(train); err != nil {
					slog.Error("无法插入列车", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入列车成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的线路数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				route := utils.GenerateRandomRoute()
				if err := repo.CreateRoute(route); err != nil {
					slog.Error("无法插入线路", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入线路成功", slog.Int("count", n-cnt))
		}
	case 4:
		if n <= 0 {
			slog.Error("请输入合法的时刻表数量")
			return
		}

		// 时刻表需要已有的列车和线路
		trains, err := repo.GetOperationalTrains()
		if err != nil {
			slog.Error("无法获取列车列表", slog.String("error", err.Error()))
			return
		}
		routes, err := repo.GetActiveRoutes()
		if err != nil {
			slog.Error("无法获取线路列表", slog.String("error", err.Error()))
			return
		}

		if len(trains) == 0 || len(routes) == 0 {
			slog.Error("请先插入列车和线路")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			train := trains[rand.Intn(len(trains))]
			route := routes[rand.Intn(len(routes))]

			schedule := utils.GenerateRandomSchedule(train, route)
			if err := repo.CreateSchedule(schedule); err != nil {
				slog.Error("无法插入时刻表", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入时刻表成功", slog.Int("count", n-cnt))
	case 5:
		seed.SeedRealData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
