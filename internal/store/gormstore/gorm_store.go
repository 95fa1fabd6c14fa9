package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bpxgen/internal/store"
	storemodel "bpxgen/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultListLimit = 50

// GormStore keeps the run history in SQLite through gorm.
type GormStore struct {
	db *gorm.DB
}

var _ store.RunRepository = (*GormStore)(nil)

// NewGormStore opens (and migrates) the database at path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.RunModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// WAL allows a few concurrent readers for the HTTP API.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) SaveRun(ctx context.Context, rec *store.RunRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store not initialised")
	}
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m, err := toModel(*rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *GormStore) GetRun(ctx context.Context, id string) (*store.RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialised")
	}
	var m storemodel.RunModel
	err := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	rec, err := fromModel(m)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns the most recent runs first.
func (s *GormStore) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store not initialised")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	var models []storemodel.RunModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.RunRecord, 0, len(models))
	for _, m := range models {
		rec, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toModel(rec store.RunRecord) (storemodel.RunModel, error) {
	m := storemodel.RunModel{
		ID:            rec.ID,
		Source:        rec.Source,
		ParameterSet:  rec.ParameterSet,
		ModelType:     rec.ModelType,
		SOC:           rec.SOC,
		Status:        rec.Status,
		Error:         rec.Error,
		Stage:         rec.Stage,
		ParamCount:    rec.ParamCount,
		CreatedAtUnix: rec.CreatedAt.UnixMilli(),
	}
	var err error
	if m.Request, err = jsonColumn(rec.Request); err != nil {
		return m, fmt.Errorf("request: %w", err)
	}
	if m.Options, err = jsonColumn(rec.Options); err != nil {
		return m, fmt.Errorf("options: %w", err)
	}
	if m.Events, err = jsonColumn(rec.Events); err != nil {
		return m, fmt.Errorf("events: %w", err)
	}
	if m.Summary, err = jsonColumn(rec.Summary); err != nil {
		return m, fmt.Errorf("summary: %w", err)
	}
	return m, nil
}

func fromModel(m storemodel.RunModel) (store.RunRecord, error) {
	rec := store.RunRecord{
		ID:           m.ID,
		CreatedAt:    time.UnixMilli(m.CreatedAtUnix),
		Source:       m.Source,
		ParameterSet: m.ParameterSet,
		ModelType:    m.ModelType,
		SOC:          m.SOC,
		Status:       m.Status,
		Error:        m.Error,
		Stage:        m.Stage,
		ParamCount:   m.ParamCount,
	}
	for _, col := range []struct {
		name string
		data datatypes.JSON
		dest any
	}{
		{"request", m.Request, &rec.Request},
		{"options", m.Options, &rec.Options},
		{"events", m.Events, &rec.Events},
		{"summary", m.Summary, &rec.Summary},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return rec, fmt.Errorf("run %s %s: %w", m.ID, col.name, err)
		}
	}
	return rec, nil
}

func jsonColumn(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
