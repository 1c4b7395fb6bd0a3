package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/simcheck/internal/db"
)

const (
	defaultVectorField = "vector"
	scoreField         = "__vector_score"
)

// SearchKNN runs an FT.SEARCH KNN query. The server returns ascending
// cosine distance, so entries come back most similar first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	args, err := knnArgs(q)
	if err != nil {
		return nil, err
	}
	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			err = db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Target: q.IndexName, Err: err}
	}
	return parseKNNReply(raw)
}

func knnArgs(q *db.KNNQuery) ([]string, error) {
	switch {
	case q.IndexName == "":
		return nil, fmt.Errorf("%w: index name is required", db.ErrInvalidQuery)
	case len(q.Vector) == 0:
		return nil, fmt.Errorf("%w: vector is required", db.ErrInvalidQuery)
	case q.K <= 0:
		return nil, fmt.Errorf("%w: k must be positive, got %d", db.ErrInvalidQuery, q.K)
	}
	field := q.VectorField
	if field == "" {
		field = defaultVectorField
	}

	args := []string{q.IndexName, fmt.Sprintf("*=>[KNN %d @%s $BLOB]", q.K, field)}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, scoreField)
	}
	return append(args,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", VectorToBytes(q.Vector),
		"DIALECT", "2",
	), nil
}

// parseKNNReply reads the RESP2 reply [total, key1, fields1, key2, fields2, ...].
func parseKNNReply(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	res := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, len(raw)/2)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := fieldMap(pairs)
		entry := db.SearchEntry{Key: key, Fields: fields}
		if d, err := strconv.ParseFloat(fields[scoreField], 64); err == nil {
			entry.Score = 1 - d
		}
		delete(fields, scoreField)
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for j := 0; j+1 < len(pairs); j += 2 {
		name, err := pairs[j].ToString()
		if err != nil {
			continue
		}
		if value, err := pairs[j+1].ToString(); err == nil {
			m[name] = value
		}
	}
	return m
}

// VectorToBytes encodes v as the little-endian FLOAT32 blob FT expects, both
// in hash fields and as the KNN query parameter.
func VectorToBytes(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return string(buf)
}
