package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidColumn  = errors.New("invalid column name")
)

// Object identifies one record of a translatable model.
type Object struct {
	ID    int64  `json:"id"`
	Label string `json:"name"`
}

// FieldValue is the current source text of one field of one object.
// NULL columns read as the empty string.
type FieldValue struct {
	ObjectID int64
	Text     string
}

// Source reads the live records of a host model. Implementations must
// return objects and values ordered by object id.
type Source interface {
	Objects(ctx context.Context) ([]Object, error)
	Values(ctx context.Context, field string) ([]FieldValue, error)
	// Value returns ErrObjectNotFound when id does not exist.
	Value(ctx context.Context, id int64, field string) (string, error)
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableSource reads a host table through GORM without touching its schema.
type TableSource struct {
	db          *gorm.DB
	table       string
	primaryKey  string
	labelColumn string
}

// NewTableSource creates a source over table. primaryKey defaults to "id";
// labelColumn is optional and used to name objects in the editor.
func NewTableSource(db *gorm.DB, table, primaryKey, labelColumn string) (*TableSource, error) {
	if primaryKey == "" {
		primaryKey = "id"
	}
	for _, name := range []string{table, primaryKey} {
		if !identifierRe.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
		}
	}
	if labelColumn != "" && !identifierRe.MatchString(labelColumn) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, labelColumn)
	}
	return &TableSource{db: db, table: table, primaryKey: primaryKey, labelColumn: labelColumn}, nil
}

func (s *TableSource) query(ctx context.Context, columns ...string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table(s.table).
		Select(columns).
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.primaryKey}})
}

func (s *TableSource) Objects(ctx context.Context) ([]Object, error) {
	columns := []string{s.primaryKey}
	if s.labelColumn != "" {
		columns = append(columns, s.labelColumn)
	}

	rows, err := s.query(ctx, columns...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var (
			id    int64
			label sql.NullString
		)
		if s.labelColumn != "" {
			err = rows.Scan(&id, &label)
		} else {
			err = rows.Scan(&id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}
		name := label.String
		if name == "" {
			name = fmt.Sprintf("#%d", id)
		}
		objects = append(objects, Object{ID: id, Label: name})
	}
	return objects, rows.Err()
}

func (s *TableSource) Values(ctx context.Context, field string) ([]FieldValue, error) {
	if !identifierRe.MatchString(field) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, field)
	}

	rows, err := s.query(ctx, s.primaryKey, field).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", s.table, field, err)
	}
	defer rows.Close()

	var values []FieldValue
	for rows.Next() {
		var (
			id   int64
			text sql.NullString
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", s.table, field, err)
		}
		values = append(values, FieldValue{ObjectID: id, Text: text.String})
	}
	return values, rows.Err()
}

func (s *TableSource) Value(ctx context.Context, id int64, field string) (string, error) {
	if !identifierRe.MatchString(field) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColumn, field)
	}

	var text sql.NullString
	err := s.db.WithContext(ctx).
		Table(s.table).
		Select([]string{field}).
		Where(clause.Eq{Column: clause.Column{Name: s.primaryKey}, Value: id}).
		Row().
		Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s #%d", ErrObjectNotFound, s.table, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s.%s: %w", s.table, field, err)
	}
	return text.String, nil
}
