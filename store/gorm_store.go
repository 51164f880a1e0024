package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Luismorlan/coursehub/model"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/*

DocumentRecord is one row of the documents table.

Kind, ID: composite primary key
Body: json encoded fields and lists of the document
Version: bumped on every write, compared on CompareAndSwap
*/
type DocumentRecord struct {
	Kind      string `gorm:"primaryKey"`
	ID        string `gorm:"primaryKey"`
	Body      datatypes.JSON
	Version   int64 `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

type documentBody struct {
	Fields map[string]string   `json:"fields"`
	Sets   map[string][]string `json:"sets"`
}

// GormStore keeps documents in a single SQL table. It works with postgres in
// production and sqlite for development and tests.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&DocumentRecord{}); err != nil {
		return nil, errors.Wrap(err, "fail to migrate documents table")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context, kind model.Kind, id string) (*model.Document, Version, error) {
	var rec DocumentRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, notFound(kind, id)
	}
	if err != nil {
		return nil, 0, unavailable("load", err)
	}

	var body documentBody
	if err := json.Unmarshal(rec.Body, &body); err != nil {
		return nil, 0, errors.Wrapf(err, "corrupted body of %s %s", kind, id)
	}
	doc := normalize(&model.Document{Kind: kind, ID: id, Fields: body.Fields, Sets: body.Sets})
	return doc, Version(rec.Version), nil
}

func (s *GormStore) Create(ctx context.Context, doc *model.Document) error {
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&DocumentRecord{Kind: string(doc.Kind), ID: doc.ID, Body: body, Version: 1})
	if res.Error != nil {
		return unavailable("create", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrAlreadyExists, "%s %s", doc.Kind, doc.ID)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		Delete(&DocumentRecord{}).Error
	return unavailable("delete", err)
}

func (s *GormStore) CompareAndSwap(ctx context.Context, doc *model.Document, expected Version) error {
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&DocumentRecord{}).
		Where("kind = ? AND id = ? AND version = ?", string(doc.Kind), doc.ID, int64(expected)).
		Updates(map[string]interface{}{
			"body":       body,
			"version":    int64(expected) + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return unavailable("compare and swap", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Nothing matched: either the version moved or the row is gone.
	var count int64
	err = s.db.WithContext(ctx).
		Model(&DocumentRecord{}).
		Where("kind = ? AND id = ?", string(doc.Kind), doc.ID).
		Count(&count).Error
	if err != nil {
		return unavailable("compare and swap", err)
	}
	if count == 0 {
		return notFound(doc.Kind, doc.ID)
	}
	return ErrVersionConflict
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func encodeBody(doc *model.Document) (datatypes.JSON, error) {
	b, err := json.Marshal(documentBody{Fields: doc.Fields, Sets: doc.Sets})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to encode %s %s", doc.Kind, doc.ID)
	}
	return datatypes.JSON(b), nil
}
