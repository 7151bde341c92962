package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"github.com/safar/go-shop/internal/config"
	"github.com/safar/go-shop/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Create logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}

	migrationDir := "migrations"
	files, err := os.ReadDir(migrationDir)
	if err != nil {
		logger.Fatal("read migration directory", zap.Error(err))
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), fmt.Sprintf(".%s.sql", direction)) {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	if direction == "down" {
		for i, j := 0, len(migrationFiles)-1; i < j; i, j = i+1, j-1 {
			migrationFiles[i], migrationFiles[j] = migrationFiles[j], migrationFiles[i]
		}
	}

	for _, filename := range migrationFiles {
		content, err := os.ReadFile(filepath.Join(migrationDir, filename))
		if err != nil {
			logger.Fatal("read migration file", zap.String("file", filename), zap.Error(err))
		}

		logger.Info("running migration", zap.String("file", filename))
		if _, err := db.Exec(string(content)); err != nil {
			logger.Fatal("execute migration", zap.String("file", filename), zap.Error(err))
		}
	}

	logger.Info("migrations complete",
		zap.Int("count", len(migrationFiles)),
		zap.String("direction", direction))
}
