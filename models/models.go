package models

import "time"

// KeyValue is a translation of one field of one object into one language,
// bound to the digest of the source text it was made for.
type KeyValue struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;uniqueIndex:idx_key_value_natural,priority:2" json:"content_type"`
	ObjectID    *int64    `gorm:"uniqueIndex:idx_key_value_natural,priority:4" json:"object_id"`
	Field       string    `gorm:"size:255;not null;uniqueIndex:idx_key_value_natural,priority:3" json:"field"`
	Language    string    `gorm:"size:16;not null;index;uniqueIndex:idx_key_value_natural,priority:1" json:"language"`
	Value       string    `gorm:"type:text" json:"value"`
	Edited      bool      `gorm:"default:false" json:"edited"`
	Fuzzy       bool      `gorm:"default:false" json:"fuzzy"`
	Digest      string    `gorm:"size:40;not null;index;uniqueIndex:idx_key_value_natural,priority:5" json:"digest"`
	UpdatedAt   time.Time `json:"updated"`
}

// Done reports whether the translation counts as finished.
func (kv *KeyValue) Done() bool {
	return kv.Edited && !kv.Fuzzy
}

// FieldWordCount caches the number of source words of one field across all
// objects of a content type.
type FieldWordCount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;uniqueIndex:idx_field_word_count" json:"content_type"`
	Field       string    `gorm:"size:64;not null;index;uniqueIndex:idx_field_word_count" json:"field"`
	TotalWords  int       `gorm:"default:0" json:"total_words"`
	Valid       bool      `gorm:"default:false" json:"valid"`
	Digest      string    `gorm:"size:40" json:"digest"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ModelWordCount caches the number of source words across all translatable
// fields of a content type.
type ModelWordCount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;uniqueIndex" json:"content_type"`
	TotalWords  int       `gorm:"default:0" json:"total_words"`
	Valid       bool      `gorm:"default:false" json:"valid"`
	Digest      string    `gorm:"size:40" json:"digest"`
	UpdatedAt   time.Time `json:"updated_at"`
}
