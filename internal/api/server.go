package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/vietanh2810/registration-api/docs"
	v1 "github.com/vietanh2810/registration-api/internal/api/handler/v1"
	"github.com/vietanh2810/registration-api/internal/api/middleware"
	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/pkg/filestore"
	"github.com/vietanh2810/registration-api/internal/repository"
	"github.com/vietanh2810/registration-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	dispatcher service.Dispatcher
}

type Option func(*Server)

// WithDispatcher replaces the detached dispatcher, mostly so tests can run
// background work inline.
func WithDispatcher(d service.Dispatcher) Option {
	return func(s *Server) {
		s.dispatcher = d
	}
}

func NewServer(conf *config.AppConfig, ledger repository.LedgerDAO, store filestore.Store, sender service.MailSender, opts ...Option) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()
	engine.MaxMultipartMemory = conf.Intake.MaxUploadMB << 20

	s := &Server{
		Config:     conf,
		Router:     engine,
		dispatcher: service.NewDetachedDispatcher(zap.L()),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.MountMiddlewares()

	registrationHandler, err := s.initRegistrationHandler(ledger, store, sender)
	if err != nil {
		return nil, err
	}
	s.MountHandlers(registrationHandler)
	s.MountReceipts(store)

	return s, nil
}

func (s *Server) initRegistrationHandler(ledger repository.LedgerDAO, store filestore.Store, sender service.MailSender) (*v1.RegistrationHandler, error) {
	if err := service.CheckRequiredFields(s.Config.Intake.RequiredFields); err != nil {
		return nil, fmt.Errorf("service.CheckRequiredFields -> %w", err)
	}

	schema, err := service.SchemaFromConfig(s.Config.Ledger)
	if err != nil {
		return nil, fmt.Errorf("service.SchemaFromConfig -> %w", err)
	}

	formatter, err := service.NewRowFormatter(schema, s.Config.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("service.NewRowFormatter -> %w", err)
	}

	repo := repository.NewLedgerRepository(ledger, schema.Range)
	notifier := service.NewNotificationService(sender, s.Config.Event)
	svc := service.NewRegistrationService(s.Config.Intake, s.Config.Event, store, repo, formatter, notifier, s.dispatcher)
	handler := v1.NewRegistrationHandler(s.Config.Intake, svc)

	return handler, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains, s.Config.API.AllowedMethods))
}

func (s *Server) MountHandlers(registrationHandler *v1.RegistrationHandler) {
	s.Router.GET("/", v1.HandleHealthcheck(s.Config.Event.Name))
	s.Router.POST("/submit", registrationHandler.HandleSubmit)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = fmt.Sprintf("%v registration API", s.Config.Event.Name)
	docs.SwaggerInfo.Description = "Accepts event registrations, records them in the ledger and emails a confirmation."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// MountReceipts serves receipts kept on local disk. Other stores hand out
// their own URLs.
func (s *Server) MountReceipts(store filestore.Store) {
	local, ok := store.(*filestore.LocalStore)
	if !ok {
		return
	}

	s.Router.Static(local.PublicPath(), local.Dir())
}
