package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	MyInfoCtx           ContextKey = "myInfo"
	UserInfoCtx         ContextKey = "userInfo"
	TrainCtx            ContextKey = "train"
	RouteCtx            ContextKey = "route"
	ScheduleCtx         ContextKey = "schedule"
	OptimizationTaskCtx ContextKey = "optimizationTask"
)
