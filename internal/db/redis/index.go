package redis

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/db"
)

// CreateIndex validates def and runs FT.CREATE.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err //nolint:wrapcheck // validation message is self-describing
	}

	cmd := s.b().Arbitrary(db.CmdCreateIndex).Args(def.CreateArgs()...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return db.Wrap(db.CmdCreateIndex, def.Name, err)
	}
	return nil
}

// DropIndex runs FT.DROPINDEX; deleteDocs adds DD so the indexed hashes go too.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	args := []string{name}
	if deleteDocs {
		args = append(args, "DD")
	}
	cmd := s.b().Arbitrary(db.CmdDropIndex).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isMissingIndex(err) {
			return db.ErrIndexNotFound
		}
		return db.Wrap(db.CmdDropIndex, name, err)
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary(db.CmdIndexInfo).Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isMissingIndex(err) {
			return false, nil
		}
		return false, db.Wrap(db.CmdIndexInfo, name, err)
	}
	return true, nil
}

// isMissingIndex covers the wording of both Redis ("Unknown index name",
// "no such index") and Valkey search ("not found").
func isMissingIndex(err error) bool {
	return isRedisErr(err, "unknown index name") ||
		isRedisErr(err, "no such index") ||
		isRedisErr(err, "not found")
}
