package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"academic-records/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер PostgreSQL
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Database держит один пул соединений: sqlx для сырых запросов, GORM поверх него
type Database struct {
	SQL *sqlx.DB
	ORM *gorm.DB
}

func InitDB(cfg *config.Config) (*Database, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	// sqlx.Connect открывает пул через lib/pq и сразу делает Ping
	dbx, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: dbx.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(parseLogLevel(cfg.DBLogLevel)),
		TranslateError: true,
	})
	if err != nil {
		dbx.Close()
		return nil, fmt.Errorf("error opening gorm session: %w", err)
	}

	log.Println("✅ Successfully connected to PostgreSQL!")
	return &Database{SQL: dbx, ORM: orm}, nil
}

func (d *Database) Close() error {
	return d.SQL.Close()
}

func parseLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// Stats возвращает счётчики для health-эндпоинта
type Stats struct {
	ActiveGroups    int64 `db:"active_groups" json:"active_groups"`
	Students        int64 `db:"students" json:"students"`
	CurriculumUnits int64 `db:"curriculum_units" json:"curriculum_units"`
	AttMarks        int64 `db:"att_marks" json:"att_marks"`
}

func (d *Database) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := d.SQL.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM stud_groups WHERE active) AS active_groups,
			(SELECT COUNT(*) FROM students) AS students,
			(SELECT COUNT(*) FROM curriculum_units) AS curriculum_units,
			(SELECT COUNT(*) FROM att_marks) AS att_marks`)
	if err != nil {
		return nil, fmt.Errorf("error collecting stats: %w", err)
	}
	return &s, nil
}
