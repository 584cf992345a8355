package service

import (
	"context"
	"datatrans/config"
	"datatrans/database"
	"datatrans/models"
	"datatrans/registry"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const purgeBatchSize = 500

// ObsoleteService finds translations that no longer match any live source text.
type ObsoleteService struct {
	db  *gorm.DB
	reg *registry.Registry
	cfg *config.Config
	log zerolog.Logger
}

// NewObsoleteService constructs an obsolete service
func NewObsoleteService(db *gorm.DB, reg *registry.Registry, cfg *config.Config, logger zerolog.Logger) *ObsoleteService {
	return &ObsoleteService{db: db, reg: reg, cfg: cfg, log: logger}
}

// Find returns every obsolete translation ordered by digest: its model or
// field is no longer registered, its object is gone, or the source text
// changed since it was created.
func (s *ObsoleteService) Find(ctx context.Context) ([]models.KeyValue, error) {
	live, err := s.readAllLive(ctx)
	if err != nil {
		return nil, err
	}
	return s.collect(s.db.WithContext(ctx), live)
}

// Review returns the obsolete translations worth a look before purging:
// those a translator edited and the recorded originals.
func (s *ObsoleteService) Review(ctx context.Context) ([]models.KeyValue, error) {
	all, err := s.Find(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.KeyValue, 0, len(all))
	for _, kv := range all {
		if s.NeedsReview(&kv) {
			out = append(out, kv)
		}
	}
	return out, nil
}

// NeedsReview reports whether an obsolete translation holds work that a
// purge would lose: a translator's edit or a recorded original.
func (s *ObsoleteService) NeedsReview(kv *models.KeyValue) bool {
	return kv.Edited || kv.Language == s.cfg.DefaultLanguage
}

// Purge deletes every obsolete translation and records when it happened.
// Host records are read first; the obsolete set is then derived again and
// deleted in one transaction.
func (s *ObsoleteService) Purge(ctx context.Context) (int64, error) {
	// Host tables are outside the transaction; an edit landing after this
	// read is picked up by the next Find or Purge.
	live, err := s.readAllLive(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		obsoletes, err := s.collect(tx, live)
		if err != nil {
			return err
		}

		ids := make([]uint, len(obsoletes))
		for i, kv := range obsoletes {
			ids[i] = kv.ID
		}
		for start := 0; start < len(ids); start += purgeBatchSize {
			end := min(start+purgeBatchSize, len(ids))
			res := tx.Delete(&models.KeyValue{}, ids[start:end])
			if res.Error != nil {
				return fmt.Errorf("failed to delete obsolete translations: %w", res.Error)
			}
			deleted += res.RowsAffected
		}

		if err := database.SetSetting(tx, models.SettingLastObsoletePurge, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to record purge: %w", err)
		}
		return database.SetSetting(tx, models.SettingLastPurgeCount, strconv.FormatInt(deleted, 10))
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("deleted", deleted).Msg("obsolete translations purged")
	return deleted, nil
}

// LastPurge returns the time and size of the last purge, if any.
func (s *ObsoleteService) LastPurge(ctx context.Context) (time.Time, int64, bool, error) {
	db := s.db.WithContext(ctx)
	at, ok, err := database.GetSetting(db, models.SettingLastObsoletePurge)
	if err != nil || !ok {
		return time.Time{}, 0, false, err
	}
	when, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("invalid %s setting: %w", models.SettingLastObsoletePurge, err)
	}

	count, ok, err := database.GetSetting(db, models.SettingLastPurgeCount)
	if err != nil {
		return time.Time{}, 0, false, err
	}
	if !ok {
		return when, 0, true, nil
	}
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("invalid %s setting: %w", models.SettingLastPurgeCount, err)
	}
	return when, n, true, nil
}

func (s *ObsoleteService) readAllLive(ctx context.Context) (map[string]liveSet, error) {
	out := make(map[string]liveSet, s.reg.Len())
	for _, m := range s.reg.Models() {
		live, err := readLive(ctx, m)
		if err != nil {
			return nil, err
		}
		out[m.ContentType] = live
	}
	return out, nil
}

func (s *ObsoleteService) collect(db *gorm.DB, live map[string]liveSet) ([]models.KeyValue, error) {
	var (
		out   []models.KeyValue
		batch []models.KeyValue
	)
	res := db.Model(&models.KeyValue{}).FindInBatches(&batch, purgeBatchSize, func(tx *gorm.DB, _ int) error {
		for _, kv := range batch {
			set, registered := live[kv.ContentType]
			if !registered || !set.current(&kv) {
				out = append(out, kv)
			}
		}
		return nil
	})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to scan translations: %w", res.Error)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Digest != out[j].Digest {
			return out[i].Digest < out[j].Digest
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
