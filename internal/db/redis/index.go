package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/simcheck/internal/db"
)

// CreateIndex runs FT.CREATE ON HASH for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	cmd := s.b().Arbitrary("FT.CREATE").Args(createArgs(def)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Target: def.Name, Err: err}
	}
	return nil
}

// DropIndex removes an index. The hashes it covered stay.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Target: name, Err: err}
	}
	return nil
}

// IndexInfo reads num_docs and the vector dimension from FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Target: name, Err: err}
	}

	info := &db.IndexInfo{Name: name}
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		switch strings.ToLower(key) {
		case "num_docs":
			info.NumDocs = messageInt(raw[i+1])
		case "attributes", "fields":
			if attrs, err := raw[i+1].ToArray(); err == nil {
				info.VectorDim = findDim(attrs)
			}
		}
	}
	return info, nil
}

// findDim searches nested attribute arrays for DIM; Redis and Valkey nest it
// at different depths.
func findDim(msgs []rueidis.RedisMessage) int {
	for i := range msgs {
		if nested, err := msgs[i].ToArray(); err == nil {
			if d := findDim(nested); d > 0 {
				return d
			}
			continue
		}
		key, err := msgs[i].ToString()
		if err != nil || !strings.EqualFold(key, "dim") || i+1 >= len(msgs) {
			continue
		}
		if d := messageInt(msgs[i+1]); d > 0 {
			return d
		}
	}
	return 0
}

func messageInt(m rueidis.RedisMessage) int {
	if n, err := m.AsInt64(); err == nil {
		return int(n)
	}
	if s, err := m.ToString(); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func createArgs(def *db.IndexDefinition) []string {
	args := []string{def.Name, "ON", "HASH"}
	if def.Prefix != "" {
		args = append(args, "PREFIX", "1", def.Prefix)
	}
	args = append(args, "SCHEMA")
	for _, f := range def.Fields {
		args = append(args, f.Name, f.Kind.String())
		if f.Kind == db.FieldVector {
			args = append(args, hnswArgs(f)...)
		}
	}
	return args
}

func hnswArgs(f db.IndexField) []string {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if f.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(f.M))
	}
	if f.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.EFConstruct))
	}
	return append([]string{"HNSW", strconv.Itoa(len(attrs))}, attrs...)
}

func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") || isRedisErr(err, "not found")
}
