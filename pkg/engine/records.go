package engine

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/store"
)

// CreateRecord inserts a record into a project the current user can write.
// The record always gets a fresh id; any id set by the caller is discarded.
func (c *Conn) CreateRecord(ctx context.Context, r *models.Record) (*models.Record, error) {
	op := policy.Op{Operation: policy.OpInsert, Collection: policy.Records, Target: r.ProjectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		level, err := policy.LevelOn(ctx, tx, id, r.ProjectID)
		if err != nil {
			return err
		}
		if err := policy.CheckInsert(id, policy.Records, level); err != nil {
			return err
		}
		r.ID = ""
		_, err = tx.CreateRecord(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecord returns a visible record. Invisible and missing records are
// both ErrRecordNotFound.
func (c *Conn) GetRecord(ctx context.Context, recordID string) (*models.Record, error) {
	var r *models.Record
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Records, Target: recordID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		r, err = tx.GetRecord(ctx, recordID, policy.VisibleRecords(id))
		return err
	})
	return r, err
}

// ListRecords returns the visible records matching filter.
func (c *Conn) ListRecords(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error) {
	var records []*models.Record
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Records, Target: filter.ProjectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		records, err = tx.ListRecords(ctx, filter, policy.VisibleRecords(id))
		return err
	})
	return records, err
}

// UpdateRecord applies patch to one record. The current user needs writer
// on the record's project, and on the destination project when the patch
// moves the record.
func (c *Conn) UpdateRecord(ctx context.Context, recordID string, patch models.RecordPatch) (*models.Record, error) {
	var r *models.Record
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Records, Target: recordID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		current, err := tx.GetRecord(ctx, recordID, policy.VisibleRecords(id))
		if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
			return err
		}
		if err := policy.CheckTarget(id, policy.OpUpdate, policy.Records, current != nil); err != nil {
			return err
		}

		for _, projectID := range lo.Uniq([]string{current.ProjectID, lo.FromPtr(patch.ProjectID)}) {
			if projectID == "" {
				continue
			}
			level, err := policy.LevelOn(ctx, tx, id, projectID)
			if err != nil {
				return err
			}
			if err := policy.CheckUpdate(id, policy.Records, level); err != nil {
				return err
			}
		}

		if _, err := tx.UpdateRecords(ctx, []string{recordID}, patch.Columns()); err != nil {
			return err
		}
		r, err = tx.GetRecord(ctx, recordID)
		return err
	})
	return r, err
}

// UpdateRecords applies patch to every visible record matching filter and
// returns how many changed. If any of them is not writable by the current
// user nothing changes and the call is denied. Rows the user cannot see
// are never touched and never reported.
func (c *Conn) UpdateRecords(ctx context.Context, filter models.RecordFilter, patch models.RecordPatch) (int64, error) {
	var n int64
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Records, Target: filter.ProjectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		visible, err := tx.RecordIDs(ctx, filter, policy.VisibleRecords(id))
		if err != nil {
			return err
		}
		writable, err := tx.RecordIDs(ctx, filter, policy.WritableRecords(id))
		if err != nil {
			return err
		}
		if err := policy.CheckBulkWrite(id, policy.OpUpdate, policy.Records, len(visible), len(writable)); err != nil {
			return err
		}
		if len(writable) == 0 {
			return nil
		}

		if patch.ProjectID != nil {
			level, err := policy.LevelOn(ctx, tx, id, *patch.ProjectID)
			if err != nil {
				return err
			}
			if err := policy.CheckUpdate(id, policy.Records, level); err != nil {
				return err
			}
		}

		n, err = tx.UpdateRecords(ctx, writable, patch.Columns())
		return err
	})
	return n, err
}

// DeleteRecord removes one record. It needs the delete capability.
func (c *Conn) DeleteRecord(ctx context.Context, recordID string) error {
	op := policy.Op{Operation: policy.OpDelete, Collection: policy.Records, Target: recordID}
	return c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckDelete(id, policy.Records); err != nil {
			return err
		}
		n, err := tx.DeleteRecords(ctx, []string{recordID})
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteRecords removes every record matching filter and returns how many
// went. It needs the delete capability, which reaches all records.
func (c *Conn) DeleteRecords(ctx context.Context, filter models.RecordFilter) (int64, error) {
	var n int64
	op := policy.Op{Operation: policy.OpDelete, Collection: policy.Records, Target: filter.ProjectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckDelete(id, policy.Records); err != nil {
			return err
		}
		ids, err := tx.RecordIDs(ctx, filter)
		if err != nil {
			return err
		}
		n, err = tx.DeleteRecords(ctx, ids)
		return err
	})
	return n, err
}
