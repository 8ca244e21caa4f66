package redis

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/concierge/internal/db"
)

// HSetMulti pipelines one HSET per item in a single DoMulti round-trip.
// Fields are written in sorted order so commands are deterministic.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	for _, it := range items {
		if len(it.Fields) == 0 {
			return fmt.Errorf("hash %s has no fields", it.Key)
		}
		hset := s.b().Hset().Key(it.Key).FieldValue()
		for _, k := range slices.Sorted(maps.Keys(it.Fields)) {
			hset = hset.FieldValue(k, it.Fields[k])
		}
		cmds = append(cmds, hset.Build())
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return db.Wrap(db.CmdHSet, items[i].Key, err)
		}
	}
	return nil
}
