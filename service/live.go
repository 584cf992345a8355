package service

import (
	"context"
	"datatrans/digest"
	"datatrans/models"
	"datatrans/registry"
	"fmt"
)

type liveKey struct {
	objectID int64
	field    string
	digest   string
}

// liveSet holds the digests of the current source text of every registered
// field of every existing object of one model.
type liveSet map[liveKey]struct{}

func readLive(ctx context.Context, m registry.Model) (liveSet, error) {
	live := make(liveSet)
	for _, f := range m.Fields {
		values, err := m.Source.Values(ctx, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s.%s: %w", m.ContentType, f.Name, err)
		}
		for _, v := range values {
			live[liveKey{objectID: v.ObjectID, field: f.Name, digest: digest.Of(v.Text)}] = struct{}{}
		}
	}
	return live, nil
}

// current reports whether kv still translates the live source text.
func (l liveSet) current(kv *models.KeyValue) bool {
	if kv.ObjectID == nil {
		return false
	}
	_, ok := l[liveKey{objectID: *kv.ObjectID, field: kv.Field, digest: kv.Digest}]
	return ok
}
