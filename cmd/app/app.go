package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/registration-api/internal/api"
	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/db"
	"github.com/vietanh2810/registration-api/internal/logger"
	"github.com/vietanh2810/registration-api/internal/pkg/filestore"
	"github.com/vietanh2810/registration-api/internal/pkg/mailer"
	"github.com/vietanh2810/registration-api/internal/repository"
	"github.com/vietanh2810/registration-api/internal/repository/dao"
)

// Start loads the config at configPath and blocks serving HTTP.
func Start(configPath string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	ctx := context.Background()

	ledger, err := openLedger(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger -> %w", err)
	}

	store, err := filestore.New(ctx, conf.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize file store -> %w", err)
	}

	sender, err := mailer.New(ctx, conf.Mail)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer -> %w", err)
	}

	s, err := api.NewServer(conf, ledger, store, sender)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr),
		zap.String("ledger", conf.Ledger.Driver),
		zap.String("storage", conf.Storage.Driver),
		zap.String("mail", conf.Mail.Driver),
	)
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openLedger(ctx context.Context, conf *config.AppConfig) (repository.LedgerDAO, error) {
	if conf.Ledger.Driver == config.LedgerDriverSheets {
		svc, err := dao.NewSheetsService(ctx, conf.Ledger.ClientEmail, conf.Ledger.PrivateKey)
		if err != nil {
			return nil, err
		}

		return dao.NewSheetsDAO(svc, conf.Ledger.SpreadsheetID), nil
	}

	var postgresDB *gorm.DB
	var err error
	if conf.Postgres.URL != "" {
		postgresDB, err = db.OpenPostgresWithURL(conf.Postgres.URL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return dao.NewLedgerRowDAO(postgresDB), nil
}
