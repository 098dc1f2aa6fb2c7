package utils

import (
	"strings"
	"testing"
	"unicode"

	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
)

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(12)

	if len(password) != 12 {
		t.Errorf("期望密码长度为 12，实际为 %d", len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(string(letters), r) {
			t.Errorf("密码中出现了预期之外的字符 %q", r)
		}
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("张伟")

	if username == "" {
		t.Fatal("用户名不应该为空")
	}
	for _, r := range username {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) {
			t.Errorf("用户名中出现了预期之外的字符 %q", r)
		}
	}
	// 拼音前缀至少保留每个字的首字母
	if !strings.HasPrefix(username, "z") {
		t.Errorf("用户名 %q 应该以姓氏拼音开头", username)
	}
}

func TestGenerateRandomTrain(t *testing.T) {
	for i := 0; i < 50; i++ {
		train := GenerateRandomTrain()

		prefix, ok := trainTypePrefixes[train.Type]
		if !ok {
			t.Fatalf("未知的车型 %q", train.Type)
		}
		if !strings.HasPrefix(train.TrainNumber, prefix) {
			t.Errorf("车型 %q 的车次号 %q 应该以 %q 开头", train.Type, train.TrainNumber, prefix)
		}
		if len(train.TrainNumber) != 5 {
			t.Errorf("车次号 %q 应该是前缀加四位数字", train.TrainNumber)
		}
		if train.Capacity < 200 || train.Capacity > 2000 {
			t.Errorf("定员 %d 超出了预期范围", train.Capacity)
		}
		if train.FuelEfficiency < 8 || train.FuelEfficiency > 15 {
			t.Errorf("燃油效率 %v 超出了预期范围", train.FuelEfficiency)
		}
	}
}

func TestGenerateRandomRoute(t *testing.T) {
	for i := 0; i < 50; i++ {
		route := GenerateRandomRoute()

		if route.StartStation == route.EndStation {
			t.Errorf("起点站和终点站不应该相同: %q", route.StartStation)
		}
		if route.Name != route.StartStation+"-"+route.EndStation {
			t.Errorf("线路名称 %q 应该由起点站和终点站拼接而成", route.Name)
		}
		if route.Distance < 50 || route.Distance > 2500 {
			t.Errorf("里程 %v 超出了预期范围", route.Distance)
		}
		if route.EstimatedTravelTime <= 0 {
			t.Errorf("预计行程时间 %d 应该为正数", route.EstimatedTravelTime)
		}
	}
}

func TestGenerateRandomSchedule(t *testing.T) {
	train := &domain.Train{ID: 1, Capacity: 1200}
	route := &domain.Route{ID: 2, EstimatedTravelTime: 180}

	for i := 0; i < 50; i++ {
		schedule := GenerateRandomSchedule(train, route)

		if schedule.TrainID != train.ID || schedule.RouteID != route.ID {
			t.Errorf("时刻表应该关联到给定的列车和线路")
		}
		if !schedule.ArrivalTime.After(schedule.DepartureTime) {
			t.Errorf("到达时间 %v 应该晚于出发时间 %v", schedule.ArrivalTime, schedule.DepartureTime)
		}
		if schedule.PassengerLoad < 1 || schedule.PassengerLoad > train.Capacity {
			t.Errorf("载客量 %d 超出了列车定员", schedule.PassengerLoad)
		}
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("test-password", "example.com")
	if err != nil {
		t.Fatalf("生成随机用户失败: %v", err)
	}

	if user.FullName == "" || user.Username == "" {
		t.Error("姓名和用户名都不应该为空")
	}
	if !strings.HasSuffix(user.Email, "@example.com") {
		t.Errorf("邮箱 %q 应该使用给定的域名", user.Email)
	}
	if user.Role != domain.RoleAdmin && user.Role != domain.RoleDispatcher {
		t.Errorf("未知的角色 %q", user.Role)
	}
	if user.PasswordHash == "test-password" {
		t.Error("密码应该以哈希形式保存")
	}
}
