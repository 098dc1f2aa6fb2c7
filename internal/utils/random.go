package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/train-optimizer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// 随机用户绝大多数是调度员，管理员手动创建即可
func GenerateRandomRole() domain.Role {
	if rand.Intn(10) == 0 {
		return domain.RoleAdmin
	}
	return domain.RoleDispatcher
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var trainTypes = []domain.TrainType{
	domain.TrainTypeHighSpeed,
	domain.TrainTypeExpress,
	domain.TrainTypeRegular,
	domain.TrainTypeFreight,
}

// 车次号前缀跟随车型，和国内铁路的命名习惯保持一致
var trainTypePrefixes = map[domain.TrainType]string{
	domain.TrainTypeHighSpeed: "G",
	domain.TrainTypeExpress:   "T",
	domain.TrainTypeRegular:   "K",
	domain.TrainTypeFreight:   "X",
}

var trainNames = []string{
	"和谐号", "复兴号", "东风号", "韶山号", "先锋号", "蓝箭号", "中原之星", "神州号",
}

func GenerateRandomTrain() *domain.Train {
	trainType := trainTypes[rand.Intn(len(trainTypes))]

	var maxSpeed int32
	switch trainType {
	case domain.TrainTypeHighSpeed:
		maxSpeed = int32(rand.Intn(51) + 300) // 300~350
	case domain.TrainTypeExpress:
		maxSpeed = int32(rand.Intn(21) + 140) // 140~160
	case domain.TrainTypeRegular:
		maxSpeed = int32(rand.Intn(21) + 100) // 100~120
	case domain.TrainTypeFreight:
		maxSpeed = int32(rand.Intn(21) + 80) // 80~100
	}

	return &domain.Train{
		TrainNumber:          trainTypePrefixes[trainType] + fmt.Sprintf("%04d", rand.Intn(9000)+1000),
		Name:                 trainNames[rand.Intn(len(trainNames))],
		Type:                 trainType,
		Capacity:             int32(rand.Intn(1801) + 200), // 200~2000
		MaxSpeed:             maxSpeed,
		FuelEfficiency:       8 + rand.Float64()*7,     // 8~15 公里/升
		MaintenanceCostPerKm: 0.8 + rand.Float64()*2.2, // 0.8~3.0 元/公里
		IsOperational:        rand.Float64() < 0.9,
	}
}

var stations = []string{
	"北京西", "上海虹桥", "广州南", "深圳北", "杭州东", "南京南", "武汉", "长沙南",
	"成都东", "重庆北", "西安北", "郑州东", "昆明南", "贵阳北", "青岛", "济南西",
	"福州", "厦门北", "南宁东", "兰州西",
}

func GenerateRandomRoute() *domain.Route {
	start := stations[rand.Intn(len(stations))]
	end := stations[rand.Intn(len(stations))]
	for end == start {
		end = stations[rand.Intn(len(stations))]
	}

	distance := float64(rand.Intn(2451) + 50) // 50~2500 公里
	// 按平均时速 120 公里估算行程时间，再加上最多一小时的停站时间
	travelTime := int32(distance/120*60) + int32(rand.Intn(61))

	return &domain.Route{
		Name:                start + "-" + end,
		StartStation:        start,
		EndStation:          end,
		Distance:            distance,
		EstimatedTravelTime: travelTime,
		IsActive:            rand.Float64() < 0.9,
	}
}

// 生成未来一周内出发的时刻表
func GenerateRandomSchedule(train *domain.Train, route *domain.Route) *domain.Schedule {
	departure := time.Now().Add(time.Duration(rand.Intn(7*24)) * time.Hour).Truncate(time.Minute)
	arrival := departure.Add(time.Duration(route.EstimatedTravelTime) * time.Minute)

	return &domain.Schedule{
		TrainID:       train.ID,
		RouteID:       route.ID,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		PassengerLoad: int32(rand.Intn(int(train.Capacity)) + 1),
	}
}
