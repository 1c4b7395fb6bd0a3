package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/simcheck/internal/db"
)

// scanPage is the COUNT hint per SCAN round-trip.
const scanPage = 200

// HSetMulti pipelines one HSET per item. The first failing item is reported
// with its key; items before it are already written.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	cmds := make([]rueidis.Completed, 0, len(items))
	for _, item := range items {
		hset := s.b().Hset().Key(item.Key).FieldValue()
		for field, value := range item.Fields {
			hset = hset.FieldValue(field, value)
		}
		cmds = append(cmds, hset.Build())
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Target: items[i].Key, Err: err}
		}
	}
	return nil
}

// Del unlinks keys; memory is reclaimed in the background.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.do(ctx, s.b().Unlink().Key(keys...).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpUnlink, Target: keys[0], Err: err}
	}
	return nil
}

// Scan collects every key matching pattern. SCAN may repeat keys across
// pages; duplicates are dropped.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		entry, err := s.do(ctx, s.b().Scan().Cursor(cursor).Match(pattern).Count(scanPage).Build()).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Target: pattern, Err: err}
		}
		for _, k := range entry.Elements {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
		if entry.Cursor == 0 {
			return keys, nil
		}
		cursor = entry.Cursor
	}
}
