package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/zbd0329/money-distributor/docs"
	v1 "github.com/zbd0329/money-distributor/internal/api/handler/v1"
	"github.com/zbd0329/money-distributor/internal/api/middleware"
	"github.com/zbd0329/money-distributor/internal/config"
	"github.com/zbd0329/money-distributor/internal/repository"
	"github.com/zbd0329/money-distributor/internal/repository/dao"
	"github.com/zbd0329/money-distributor/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	distributionSvc *service.DistributionService
}

func NewServer(conf *config.AppConfig, db *gorm.DB, allocator service.TokenAllocator) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	distributionHandler := s.initDistributionHandler(db, allocator)
	walletHandler := s.initWalletHandler(db)
	roomHandler := s.initRoomHandler(db)
	s.MountHandlers(distributionHandler, walletHandler, roomHandler)

	return s
}

// Close drains the claim worker pool. Call it before the process exits.
func (s *Server) Close() {
	s.distributionSvc.Close()
}

func (s *Server) initDistributionHandler(db *gorm.DB, allocator service.TokenAllocator) *v1.DistributionHandler {
	walletDAO := dao.NewWalletDAO(db)
	distributionDAO := dao.NewDistributionDAO(db, walletDAO)
	repo := repository.NewDistributionRepository(distributionDAO)
	walletRepo := repository.NewWalletRepository(walletDAO)
	roomRepo := repository.NewRoomRepository(dao.NewRoomDAO(db))

	s.distributionSvc = service.NewDistributionService(repo, walletRepo, roomRepo, allocator, service.DispatcherOptions{
		Workers:      s.Config.Dispatcher.Workers,
		QueueSize:    s.Config.Dispatcher.QueueSize,
		ClaimTimeout: time.Duration(s.Config.Dispatcher.ClaimTimeoutSeconds) * time.Second,
	})

	return v1.NewDistributionHandler(s.distributionSvc)
}

func (s *Server) initWalletHandler(db *gorm.DB) *v1.WalletHandler {
	walletDAO := dao.NewWalletDAO(db)
	repo := repository.NewWalletRepository(walletDAO)
	svc := service.NewWalletService(repo)

	return v1.NewWalletHandler(svc)
}

func (s *Server) initRoomHandler(db *gorm.DB) *v1.RoomHandler {
	roomDAO := dao.NewRoomDAO(db)
	repo := repository.NewRoomRepository(roomDAO)
	svc := service.NewRoomService(repo)

	return v1.NewRoomHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(distributionHandler *v1.DistributionHandler, walletHandler *v1.WalletHandler, roomHandler *v1.RoomHandler) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.RequireUserID())
	{
		authed.POST("/spray", distributionHandler.HandleCreateSpray)
		authed.POST("/receive", distributionHandler.HandleReceive)
		authed.GET("/spray/:token", distributionHandler.HandleGetSprayStatus)

		authed.POST("/wallet", walletHandler.HandleCreateWallet)
		authed.POST("/wallet/charge", walletHandler.HandleCharge)
		authed.GET("/wallet", walletHandler.HandleGetWallet)

		authed.POST("/rooms", roomHandler.HandleCreateRoom)
		authed.POST("/rooms/:roomID/join", roomHandler.HandleJoinRoom)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Money Distributor API"
	docs.SwaggerInfo.Description = "Spray money into a chat room and let members claim shares."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
