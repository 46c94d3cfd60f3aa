package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"makerspace/internal/controllers"
	"makerspace/internal/listeners"
	"makerspace/internal/repositories"
	"makerspace/internal/services"
	"makerspace/pkg/config"
	"makerspace/pkg/eventbus"
	"makerspace/pkg/middleware"
	"makerspace/pkg/service"
	appwebsocket "makerspace/pkg/websocket"
)

type Loggers struct {
	Main   *zap.Logger
	Auth   *zap.Logger
	Audit  *zap.Logger
	Reader *zap.Logger
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	hub *appwebsocket.Hub,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("registering routes")

	txManager := repositories.NewTxManager(dbConn)

	// Repositories
	userRepo := repositories.NewUserRepository(dbConn, loggers.Main)
	holdRepo := repositories.NewHoldRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	moduleRepo := repositories.NewTrainingModuleRepository(dbConn)
	subRepo := repositories.NewSubmissionRepository(dbConn)
	reservationRepo := repositories.NewReservationRepository(dbConn)
	accessCheckRepo := repositories.NewAccessCheckRepository(dbConn)
	auditLogRepo := repositories.NewAuditLogRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// Services
	listeners.NewAuditListener(loggers.Audit).Register(bus)
	auditService := services.NewAuditLogService(auditLogRepo, bus, loggers.Audit)
	privilegeService := services.NewAuthPrivilegeService(userRepo, cacheRepo, loggers.Auth, cfg.Auth.PrivilegeCacheTTL)
	eligibilityService := services.NewEligibilityService(txManager, userRepo, holdRepo, equipmentRepo, subRepo, loggers.Main)
	trainingService := services.NewTrainingService(txManager, moduleRepo, subRepo, equipmentRepo, accessCheckRepo, userRepo, auditService, loggers.Main)
	reservationService := services.NewReservationService(txManager, reservationRepo, equipmentRepo, userRepo, eligibilityService, auditService, loggers.Main)
	holdService := services.NewHoldService(txManager, holdRepo, userRepo, auditService, loggers.Main)
	userService := services.NewUserService(txManager, userRepo, privilegeService, auditService, loggers.Main)
	equipmentService := services.NewEquipmentService(txManager, equipmentRepo, moduleRepo, userRepo, auditService, loggers.Main)
	accessCheckService := services.NewAccessCheckService(txManager, accessCheckRepo, userRepo, equipmentRepo, auditService, loggers.Main)
	readerService := services.NewReaderService(eligibilityService, equipmentRepo, auditService, loggers.Reader)

	// Controllers
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, readerService, loggers.Main)
	trainingCtrl := controllers.NewTrainingController(trainingService, loggers.Main)
	userCtrl := controllers.NewUserController(userService, holdService, loggers.Main)
	reservationCtrl := controllers.NewReservationController(reservationService, loggers.Main)
	accessCheckCtrl := controllers.NewAccessCheckController(accessCheckService, loggers.Main)
	auditLogCtrl := controllers.NewAuditLogController(auditService, loggers.Audit)
	readerCtrl := controllers.NewReaderController(hub, readerService, equipmentService, privilegeService, loggers.Reader)

	authMW := middleware.NewAuthMiddleware(jwtSvc, privilegeService, loggers.Auth)
	secureGroup := e.Group("/api", authMW.Auth)

	runEquipmentRouter(secureGroup, equipmentCtrl)
	runTrainingRouter(secureGroup, trainingCtrl)
	runUserRouter(secureGroup, userCtrl, accessCheckCtrl)
	runReservationRouter(secureGroup, reservationCtrl)
	runAccessCheckRouter(secureGroup, accessCheckCtrl)
	runAuditLogRouter(secureGroup, auditLogCtrl)
	runReaderRouter(e.Group("/ws", authMW.Auth), readerCtrl)

	loggers.Main.Info("routes registered", zap.Int("count", len(e.Routes())))
}
