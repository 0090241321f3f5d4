package app

import (
	"os"
	"os/signal"
	"syscall"

	"procurement-marketplace-api/internal/controller"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/oracle"
	"procurement-marketplace-api/internal/repo"
	"procurement-marketplace-api/internal/service"
	"procurement-marketplace-api/pkg/config"
	"procurement-marketplace-api/pkg/http_server"
	"procurement-marketplace-api/pkg/jwt"
	"procurement-marketplace-api/pkg/logger"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
)

// tokenSigner adapts the jwt manager to the service layer's signing port.
type tokenSigner struct {
	tokens *jwt.Manager
}

func (s tokenSigner) Sign(p entity.Principal) (string, error) {
	organizationId := ""
	if p.IsUser() {
		organizationId = p.OrganizationId.String()
	}

	return s.tokens.Generate(p.Id.String(), p.Kind, p.Role, organizationId)
}

func runMigrations(postgresDB *postgres.Postgres, databaseName, migrationsDir string, log *logger.Logger) {
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		log.Fatal().Err(err).Msg("migration driver init failed")
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, databaseName, driver)
	if err != nil {
		log.Fatal().Err(err).Msg("migration source init failed")
	}

	if err := migrations.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info().Msg("no change made by migration scripts")
			return
		}
		log.Fatal().Err(err).Msg("migrations failed")
	}

	log.Info().Msg("migrations applied")
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from the same config, so this one failure
		// goes to stderr directly.
		panic(err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	log.Info().Str("env", cfg.App.Env).Msg("starting " + cfg.App.Name)

	log.Info().Msg("connecting database")
	postgresDB, err := postgres.NewDB(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer postgresDB.Close()

	runMigrations(postgresDB, cfg.DB.DBName, cfg.DB.MigrationsDir, log)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	oracleClient := oracle.NewAnthropicClient(cfg.Oracle.APIKey, cfg.Oracle.Model)

	repositories := repo.NewRepositories(postgresDB)
	services := service.NewServices(&service.ServicesDependencies{
		Repos:  repositories,
		Signer: tokenSigner{tokens: tokens},
		Oracle: oracleClient,
	})

	handler := echo.New()
	controller.SetupRoutesHandlers(handler, services, tokens)

	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("starting server")
	httpServer := http_server.New(handler, cfg.HTTP.Addr())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info().Str("signal", s.String()).Msg("got signal")
	case err = <-httpServer.Notify():
		log.Error().Err(err).Msg("server stopped")
	}

	log.Info().Msg("shutting down")
	if err := httpServer.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		return
	}
	log.Info().Msg("successful shutdown")
}
