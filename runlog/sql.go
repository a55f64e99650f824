package runlog

import (
	"context"
	"time"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/database"
)

// row is the table layout of the SQL registry. The full record is kept as
// JSON next to the indexed columns.
type row struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"size:64;index"`
	Model     string `gorm:"size:255;index:idx_runs_namespace"`
	Dataset   string `gorm:"size:255;index:idx_runs_namespace"`
	Phase     string `gorm:"size:16"`
	Status    string `gorm:"size:16"`
	Record    Record `gorm:"type:text;serializer:json"`
	CreatedAt time.Time
}

func (row) TableName() string { return "dyne_runs" }

// Models returns the models the SQL registry needs migrated.
func Models() []interface{} { return []interface{}{&row{}} }

// SQL stores records in the dyne_runs table.
type SQL struct {
	db   *database.DB
	opts cache.Options
}

// NewSQL migrates the runs table and returns a registry for the namespace of opts.
func NewSQL(db *database.DB, opts cache.Options) (*SQL, error) {
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return &SQL{db: db, opts: opts}, nil
}

// Append inserts rec.
func (s *SQL) Append(ctx context.Context, rec Record) error {
	r := row{
		RunID:   rec.RunID,
		Model:   s.opts.ModelName,
		Dataset: s.opts.DatasetName,
		Phase:   string(rec.Phase),
		Status:  rec.Status,
		Record:  rec,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return database.FromDatabase(err, "append run record")
	}
	return nil
}

// List returns the namespace's records in insertion order.
func (s *SQL) List(ctx context.Context) ([]Record, error) {
	var rows []row
	err := s.db.WithContext(ctx).
		Where("model = ? AND dataset = ?", s.opts.ModelName, s.opts.DatasetName).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, database.FromDatabase(err, "list run records")
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record
	}
	return out, nil
}

var _ Registry = (*SQL)(nil)
