package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm keeps documents in the documents table.
type Gorm struct {
	db        *gorm.DB
	projectID string
	opts      options
}

// NewGorm binds the store to one tenant. An empty projectID is a configuration error.
func NewGorm(db *gorm.DB, projectID string, opts ...Option) (*Gorm, error) {
	if projectID == "" {
		return nil, config.ErrMissingProjectID
	}
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Gorm{db: db, projectID: projectID, opts: o}, nil
}

func (s *Gorm) ProjectID() string {
	return s.projectID
}

func (s *Gorm) collection(ctx context.Context, collection string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Document{}).
		Where("project_id = ? AND collection = ?", s.projectID, collection)
}

// lockRow takes a row lock where the dialect has one; SQLite serializes writers anyway.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func toRecord(doc models.Document) Record {
	rec := Record(decodeNumbers(doc.Data).(map[string]any))
	rec["id"] = doc.ID
	return rec
}

// decodeNumbers copies v, turning the json.Number values JSONMap scans into float64 so
// records read back carry the same types encoding/json would produce.
func decodeNumbers(v any) any {
	switch t := v.(type) {
	case datatypes.JSONMap:
		return decodeNumbers(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = decodeNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeNumbers(e)
		}
		return out
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func (s *Gorm) FetchAll(ctx context.Context, collection string) ([]Record, error) {
	var docs []models.Document
	err := s.collection(ctx, collection).Order("created_at DESC").Order("id DESC").Find(&docs).Error
	if err != nil {
		logging.Error().Err(err).Str("collection", collection).Msg("Error fetching collection")
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRecord(doc))
	}
	return records, nil
}

func (s *Gorm) FetchOne(ctx context.Context, collection, id string) (Record, error) {
	var doc models.Document
	err := s.collection(ctx, collection).Where("id = ?", id).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error fetching document")
		return nil, fmt.Errorf("fetch %s/%s: %w", collection, id, err)
	}
	return toRecord(doc), nil
}

func (s *Gorm) Add(ctx context.Context, collection string, data Record) (string, error) {
	now := s.opts.now()
	fields := fieldsOf(data)
	fields["createdAt"] = now
	fields["updatedAt"] = now

	doc := models.Document{
		ProjectID:  s.projectID,
		Collection: collection,
		ID:         s.opts.newID(),
		Data:       datatypes.JSONMap(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		logging.Error().Err(err).Str("collection", collection).Msg("Error adding document")
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return doc.ID, nil
}

func (s *Gorm) Update(ctx context.Context, collection, id string, partial Record) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.lockedDocument(tx, collection, id)
		if err != nil {
			return err
		}

		now := s.opts.now()
		data := cloneMap(doc.Data)
		for k, v := range fieldsOf(partial) {
			data[k] = v
		}
		data["updatedAt"] = now
		return s.write(tx, collection, id, data, now)
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		logging.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error updating document")
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return err
}

func (s *Gorm) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND collection = ? AND id = ?", s.projectID, collection, id).
		Delete(&models.Document{}).Error
	if err != nil {
		logging.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error deleting document")
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Gorm) Merge(ctx context.Context, collection, id string, data Record) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.opts.now()

		created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Document{
			ProjectID:  s.projectID,
			Collection: collection,
			ID:         id,
			Data:       datatypes.JSONMap(fieldsOf(data)),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected > 0 {
			return nil
		}

		doc, err := s.lockedDocument(tx, collection, id)
		if err != nil {
			return err
		}
		merged := cloneMap(doc.Data)
		MergeInto(merged, fieldsOf(data))
		return s.write(tx, collection, id, merged, now)
	})
	if err != nil {
		logging.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error merging document")
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Gorm) lockedDocument(tx *gorm.DB, collection, id string) (models.Document, error) {
	var doc models.Document
	err := lockRow(tx).
		Where("project_id = ? AND collection = ? AND id = ?", s.projectID, collection, id).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, ErrNotFound
	}
	return doc, err
}

func (s *Gorm) write(tx *gorm.DB, collection, id string, data map[string]any, now time.Time) error {
	return tx.Model(&models.Document{}).
		Where("project_id = ? AND collection = ? AND id = ?", s.projectID, collection, id).
		Updates(map[string]interface{}{
			"data":       datatypes.JSONMap(data),
			"updated_at": now,
		}).Error
}
