package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// AddToRelationship appends references to a to-many relationship, skipping
// ones that are already linked.
func (h *ResourceHandler) AddToRelationship(ctx context.Context, tx atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}
	if err := h.requireExists(ctx, sqltx, id); err != nil {
		return err
	}
	next, err := h.nextPosition(ctx, sqltx, id, rel)
	if err != nil {
		return err
	}
	return h.insertLinks(ctx, sqltx, id, rel, refs, next)
}

// SetRelationship replaces a relationship's linkage outright. An empty refs
// slice clears it, which is how a to-one relationship is set to null.
func (h *ResourceHandler) SetRelationship(ctx context.Context, tx atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}
	if err := h.requireExists(ctx, sqltx, id); err != nil {
		return err
	}
	return h.replaceLinks(ctx, sqltx, id, rel, refs)
}

// RemoveFromRelationship unlinks references from a to-many relationship.
// References that are not linked are ignored.
func (h *ResourceHandler) RemoveFromRelationship(ctx context.Context, tx atomic.Transaction, id string, rel schema.Relationship, refs []atomic.Reference) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}
	if err := h.requireExists(ctx, sqltx, id); err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := sqltx.ExecContext(ctx,
			`DELETE FROM relationship_links WHERE from_type = ? AND from_id = ? AND relationship = ? AND to_type = ? AND to_id = ?`,
			h.resourceType.Name, id, rel.Name, ref.Type, ref.ID,
		); err != nil {
			return fmt.Errorf("unlink %s from %s/%s: %w", rel.Name, ref.Type, ref.ID, err)
		}
	}
	return nil
}

// GetRelationship loads a relationship's linkage in stored order.
func (h *ResourceHandler) GetRelationship(ctx context.Context, tx atomic.Transaction, id string, rel schema.Relationship) (atomic.Linkage, error) {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return atomic.Linkage{}, err
	}
	if err := h.requireExists(ctx, sqltx, id); err != nil {
		return atomic.Linkage{}, err
	}
	return h.loadLinkage(ctx, sqltx, id, rel)
}

// replaceLinks clears a relationship's linkage and inserts the given
// references in payload order.
func (h *ResourceHandler) replaceLinks(ctx context.Context, tx *sql.Tx, id string, rel schema.Relationship, refs []atomic.Reference) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM relationship_links WHERE from_type = ? AND from_id = ? AND relationship = ?`,
		h.resourceType.Name, id, rel.Name,
	); err != nil {
		return fmt.Errorf("clear relationship %s: %w", rel.Name, err)
	}
	return h.insertLinks(ctx, tx, id, rel, refs, 0)
}

// insertLinks verifies each referenced resource exists and links it,
// numbering positions from basePosition. Already-linked references are left
// in place.
func (h *ResourceHandler) insertLinks(ctx context.Context, tx *sql.Tx, id string, rel schema.Relationship, refs []atomic.Reference, basePosition int) error {
	for i, ref := range refs {
		exists, err := resourceExists(ctx, tx, ref.Type, ref.ID)
		if err != nil {
			return err
		}
		if !exists {
			return relatedNotFound(rel, ref.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO relationship_links (from_type, from_id, relationship, to_type, to_id, position) VALUES (?, ?, ?, ?, ?, ?)`,
			h.resourceType.Name, id, rel.Name, ref.Type, ref.ID, basePosition+i,
		); err != nil {
			return fmt.Errorf("link %s to %s/%s: %w", rel.Name, ref.Type, ref.ID, err)
		}
	}
	return nil
}

func (h *ResourceHandler) nextPosition(ctx context.Context, tx *sql.Tx, id string, rel schema.Relationship) (int, error) {
	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM relationship_links WHERE from_type = ? AND from_id = ? AND relationship = ?`,
		h.resourceType.Name, id, rel.Name,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("next position for %s: %w", rel.Name, err)
	}
	return next, nil
}

func (h *ResourceHandler) loadLinkage(ctx context.Context, tx *sql.Tx, id string, rel schema.Relationship) (atomic.Linkage, error) {
	linkage := atomic.Linkage{Many: rel.Kind == schema.ToMany}

	rows, err := tx.QueryContext(ctx,
		`SELECT to_type, to_id FROM relationship_links WHERE from_type = ? AND from_id = ? AND relationship = ? ORDER BY position ASC`,
		h.resourceType.Name, id, rel.Name,
	)
	if err != nil {
		return atomic.Linkage{}, fmt.Errorf("load relationship %s: %w", rel.Name, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var ref atomic.Reference
		if err := rows.Scan(&ref.Type, &ref.ID); err != nil {
			return atomic.Linkage{}, fmt.Errorf("scan link: %w", err)
		}
		linkage.Refs = append(linkage.Refs, ref)
	}
	if err := rows.Err(); err != nil {
		return atomic.Linkage{}, fmt.Errorf("rows iteration: %w", err)
	}

	return linkage, nil
}
