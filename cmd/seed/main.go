package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"homebudget/internal/app"
	"homebudget/internal/dto"
	"homebudget/internal/service"
	"homebudget/pkg/config"
	"homebudget/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	fixture := filepath.Join("cmd", "seed", "demo.json")
	if len(os.Args) > 1 {
		fixture = os.Args[1]
	}
	cacheFile := filepath.Join(filepath.Dir(fixture), ".seed_cache.json")

	appLogger.Info("Starting database seeding...", zap.String("fixture", fixture))
	if err := seed(ctx, a, fixture, cacheFile, appLogger); err != nil {
		appLogger.Fatal("Failed to seed database", zap.Error(err))
	}
	appLogger.Info("Database seeding completed successfully!")
}

// Fixture is a demo account with its budgets and expenses.
type Fixture struct {
	User     dto.RegisterRequest        `json:"user"`
	Budgets  []dto.CreateBudgetRequest  `json:"budgets"`
	Expenses []dto.CreateExpenseRequest `json:"expenses"`
}

// SeededFile records a fixture that has already been applied.
type SeededFile struct {
	FilePath string    `json:"file_path"`
	FileHash string    `json:"file_hash"`
	SeededAt time.Time `json:"seeded_at"`
	UserID   string    `json:"user_id"`
}

// CacheData stores the fixtures already applied, keyed by path.
type CacheData struct {
	SeededFiles map[string]SeededFile `json:"seeded_files"`
}

func seed(ctx context.Context, a *app.App, fixturePath, cacheFile string, logger *zap.Logger) error {
	hash, err := fileHash(fixturePath)
	if err != nil {
		return err
	}

	cache, err := loadCache(cacheFile)
	if err != nil {
		return err
	}
	if prev, ok := cache.SeededFiles[fixturePath]; ok && prev.FileHash == hash {
		// expenses have no natural key, replaying would duplicate them
		logger.Info("Fixture already seeded, skipping", zap.String("fixture", fixturePath))
		return nil
	}

	fixture, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	userID, err := ensureUser(ctx, a, &fixture.User, logger)
	if err != nil {
		return err
	}

	for i := range fixture.Budgets {
		req := &fixture.Budgets[i]
		_, err := a.Budgets.Create(ctx, userID, req)
		if errors.Is(err, service.ErrDuplicateBudget) {
			logger.Info("Budget exists, skipping", zap.String("category", req.Category))
			continue
		}
		if err != nil {
			return fmt.Errorf("create budget %q: %w", req.Category, err)
		}
	}

	for i := range fixture.Expenses {
		req := &fixture.Expenses[i]
		_, err := a.Expenses.Create(ctx, userID, req)
		if service.KindOf(err) == service.KindDomain {
			logger.Warn("Expense rejected by admission policy, skipping",
				zap.String("category", req.Category), zap.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("create expense %d (%s): %w", i, req.Category, err)
		}
	}

	logger.Info("Fixture applied",
		zap.String("user_id", userID.String()),
		zap.Int("budgets", len(fixture.Budgets)),
		zap.Int("expenses", len(fixture.Expenses)),
	)

	cache.SeededFiles[fixturePath] = SeededFile{
		FilePath: fixturePath,
		FileHash: hash,
		SeededAt: time.Now(),
		UserID:   userID.String(),
	}
	return saveCache(cacheFile, cache)
}

// ensureUser registers the demo user, or logs in when it already exists.
func ensureUser(ctx context.Context, a *app.App, req *dto.RegisterRequest, logger *zap.Logger) (uuid.UUID, error) {
	resp, err := a.Auth.Register(ctx, req)
	if errors.Is(err, service.ErrDuplicateUsername) || errors.Is(err, service.ErrDuplicateEmail) {
		logger.Info("Demo user exists, logging in", zap.String("email", req.Email))
		resp, err = a.Auth.Login(ctx, &dto.LoginRequest{Email: req.Email, Password: req.Password})
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("demo user: %w", err)
	}
	return uuid.Parse(resp.User.ID)
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// loadCache loads the record of applied fixtures
func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		SeededFiles: make(map[string]SeededFile),
	}

	if _, err := os.Stat(cacheFile); os.IsNotExist(err) {
		return cache, nil
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.SeededFiles == nil {
		cache.SeededFiles = make(map[string]SeededFile)
	}
	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash fixture: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
