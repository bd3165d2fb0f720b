package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/types"
	"github.com/attunelab/attune-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "attune", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Therapist{},
		&types.Couple{},
		&types.User{},
		&types.CoupleLayout{},
		&types.IndividualLayoutOverride{},
		&types.LayoutTemplate{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		stmt string
	}{
		{
			name: "fk_couple_layout_couple_id",
			stmt: `ALTER TABLE "couple_layout"
				ADD CONSTRAINT "fk_couple_layout_couple_id"
				FOREIGN KEY ("couple_id") REFERENCES "couple"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_individual_layout_override_user_id",
			stmt: `ALTER TABLE "individual_layout_override"
				ADD CONSTRAINT "fk_individual_layout_override_user_id"
				FOREIGN KEY ("user_id") REFERENCES "user"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_individual_layout_override_couple_id",
			stmt: `ALTER TABLE "individual_layout_override"
				ADD CONSTRAINT "fk_individual_layout_override_couple_id"
				FOREIGN KEY ("couple_id") REFERENCES "couple"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_layout_template_therapist_id",
			stmt: `ALTER TABLE "layout_template"
				ADD CONSTRAINT "fk_layout_template_therapist_id"
				FOREIGN KEY ("therapist_id") REFERENCES "therapist"("id")
				ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var count int64
		if err := s.db.Raw(
			`SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?`, c.name,
		).Scan(&count).Error; err != nil {
			s.log.Error("Failed checking constraint", "constraint", c.name, "error", err)
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			s.log.Error("Failed adding constraint", "constraint", c.name, "error", err)
			return err
		}
	}
	s.log.Info("Postgres tables ready")
	return nil
}
