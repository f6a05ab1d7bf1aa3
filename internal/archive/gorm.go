package archive

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GameRecord struct {
	gorm.Model
	RoomID     string        `gorm:"size:36;not null;index"`
	RoomName   string        `gorm:"size:255;not null"`
	WinnerID   string        `gorm:"size:36"`
	FinishedAt time.Time     `gorm:"not null;index"`
	Scores     []ScoreRecord `gorm:"foreignKey:GameRecordID"`
}

type ScoreRecord struct {
	gorm.Model
	GameRecordID uint   `gorm:"not null;index"`
	Seat         int    `gorm:"not null"`
	PlayerID     string `gorm:"size:36;not null"`
	Name         string `gorm:"size:64;not null"`
	Total        int    `gorm:"not null"`
}

// GormStore writes results to Postgres.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to dsn and migrates the result tables.
func OpenGorm(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := db.AutoMigrate(&GameRecord{}, &ScoreRecord{}); err != nil {
		return nil, fmt.Errorf("migrate archive db: %w", err)
	}
	return NewGormStore(db), nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, r Result) error {
	rec := toRecord(r)
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(r Result) GameRecord {
	rec := GameRecord{
		RoomID:     r.RoomID,
		RoomName:   r.RoomName,
		WinnerID:   r.WinnerID,
		FinishedAt: r.FinishedAt,
		Scores:     make([]ScoreRecord, 0, len(r.Scores)),
	}
	for i, s := range r.Scores {
		rec.Scores = append(rec.Scores, ScoreRecord{
			Seat:     i,
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Total:    s.Score,
		})
	}
	return rec
}
