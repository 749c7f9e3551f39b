package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mwhitworth/stagehand/internal/atomic"
	"github.com/mwhitworth/stagehand/internal/schema"
)

// ResourceHandler persists one resource type in the shared EAV tables. It
// implements the full set of operation capabilities, so the capability
// resolver finds create, update, delete, and all three relationship
// operations on it.
type ResourceHandler struct {
	resourceType *schema.ResourceType
}

// NewResourceHandler creates the persistence handler for one resource type.
func NewResourceHandler(resourceType *schema.ResourceType) *ResourceHandler {
	return &ResourceHandler{resourceType: resourceType}
}

// CreateResource inserts a new resource with its targeted attributes and
// relationship linkage, assigning an identity unless the client supplied
// one, and returns the stored resource.
func (h *ResourceHandler) CreateResource(ctx context.Context, tx atomic.Transaction, res *atomic.Resource, fields atomic.TargetedFields) (*atomic.Resource, error) {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	id := res.ID
	if id == "" {
		id, err = h.nextID(ctx, sqltx)
		if err != nil {
			return nil, err
		}
	} else {
		exists, err := resourceExists(ctx, sqltx, h.resourceType.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, alreadyExists(h.resourceType.Name, id)
		}
	}

	ts := now()
	if _, err := sqltx.ExecContext(ctx,
		`INSERT INTO resources (resource_type, id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		h.resourceType.Name, id, ts, ts,
	); err != nil {
		return nil, fmt.Errorf("insert resource: %w", err)
	}

	if err := h.writeAttributes(ctx, sqltx, id, res.Attributes, fields); err != nil {
		return nil, err
	}
	if err := h.writeRelationships(ctx, sqltx, id, res.Relationships, fields); err != nil {
		return nil, err
	}

	return h.getResource(ctx, sqltx, id)
}

// UpdateResource merges the targeted attributes and relationship linkage
// into an existing resource and returns the stored result.
func (h *ResourceHandler) UpdateResource(ctx context.Context, tx atomic.Transaction, res *atomic.Resource, fields atomic.TargetedFields) (*atomic.Resource, error) {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	if err := h.requireExists(ctx, sqltx, res.ID); err != nil {
		return nil, err
	}

	if err := h.writeAttributes(ctx, sqltx, res.ID, res.Attributes, fields); err != nil {
		return nil, err
	}
	if err := h.writeRelationships(ctx, sqltx, res.ID, res.Relationships, fields); err != nil {
		return nil, err
	}
	if err := h.touch(ctx, sqltx, res.ID); err != nil {
		return nil, err
	}

	return h.getResource(ctx, sqltx, res.ID)
}

// DeleteResource removes a resource, its attribute rows, and every
// relationship link it participates in.
func (h *ResourceHandler) DeleteResource(ctx context.Context, tx atomic.Transaction, id string) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	res, err := sqltx.ExecContext(ctx,
		`DELETE FROM resources WHERE resource_type = ? AND id = ?`,
		h.resourceType.Name, id,
	)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(h.resourceType.Name, id)
	}

	// Attribute rows and outgoing links cascade with the resource row;
	// links held by other resources are cleaned up here.
	if _, err := sqltx.ExecContext(ctx,
		`DELETE FROM relationship_links WHERE to_type = ? AND to_id = ?`,
		h.resourceType.Name, id,
	); err != nil {
		return fmt.Errorf("delete inbound links: %w", err)
	}

	return nil
}

// GetResource loads one resource with all its attributes and relationship
// linkage.
func (h *ResourceHandler) GetResource(ctx context.Context, tx atomic.Transaction, id string) (*atomic.Resource, error) {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return h.getResource(ctx, sqltx, id)
}

func (h *ResourceHandler) getResource(ctx context.Context, tx *sql.Tx, id string) (*atomic.Resource, error) {
	if err := h.requireExists(ctx, tx, id); err != nil {
		return nil, err
	}

	res := &atomic.Resource{
		Type:       h.resourceType.Name,
		ID:         id,
		Attributes: make(map[string]any),
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT name, value FROM attribute_values WHERE resource_type = ? AND resource_id = ?`,
		h.resourceType.Name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return nil, fmt.Errorf("decode attribute %s: %w", name, err)
		}
		res.Attributes[name] = decoded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if len(h.resourceType.Relationships) > 0 {
		res.Relationships = make(map[string]atomic.Linkage, len(h.resourceType.Relationships))
		for _, rel := range h.resourceType.Relationships {
			linkage, err := h.loadLinkage(ctx, tx, id, rel)
			if err != nil {
				return nil, err
			}
			res.Relationships[rel.Name] = linkage
		}
	}

	return res, nil
}

// nextID assigns the next identity for the handler's type: a per-type
// counter for integer identities, a fresh UUID otherwise.
func (h *ResourceHandler) nextID(ctx context.Context, tx *sql.Tx) (string, error) {
	if h.resourceType.IDKind == schema.IDUUID {
		return uuid.NewString(), nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO id_counters (resource_type, value) VALUES (?, 1)
		 ON CONFLICT(resource_type) DO UPDATE SET value = value + 1`,
		h.resourceType.Name,
	); err != nil {
		return "", fmt.Errorf("advance id counter: %w", err)
	}

	var value int64
	if err := tx.QueryRowContext(ctx,
		`SELECT value FROM id_counters WHERE resource_type = ?`,
		h.resourceType.Name,
	).Scan(&value); err != nil {
		return "", fmt.Errorf("read id counter: %w", err)
	}
	return strconv.FormatInt(value, 10), nil
}

// writeAttributes upserts the targeted attributes. Values are stored as
// their JSON encoding, so types round-trip without a per-attribute schema.
func (h *ResourceHandler) writeAttributes(ctx context.Context, tx *sql.Tx, id string, attrs map[string]any, fields atomic.TargetedFields) error {
	for _, name := range fields.Attributes {
		encoded, err := json.Marshal(attrs[name])
		if err != nil {
			return fmt.Errorf("encode attribute %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attribute_values (resource_type, resource_id, name, value) VALUES (?, ?, ?, ?)
			 ON CONFLICT(resource_type, resource_id, name) DO UPDATE SET value = excluded.value`,
			h.resourceType.Name, id, name, string(encoded),
		); err != nil {
			return fmt.Errorf("write attribute %s: %w", name, err)
		}
	}
	return nil
}

// writeRelationships replaces the linkage of each targeted relationship
// with the payload's.
func (h *ResourceHandler) writeRelationships(ctx context.Context, tx *sql.Tx, id string, rels map[string]atomic.Linkage, fields atomic.TargetedFields) error {
	for _, name := range fields.Relationships {
		rel, ok := h.resourceType.Relationship(name)
		if !ok {
			return fmt.Errorf("unknown relationship %q on %s", name, h.resourceType.Name)
		}
		if err := h.replaceLinks(ctx, tx, id, rel, rels[name].Refs); err != nil {
			return err
		}
	}
	return nil
}

func (h *ResourceHandler) touch(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE resources SET updated_at = ? WHERE resource_type = ? AND id = ?`,
		now(), h.resourceType.Name, id,
	); err != nil {
		return fmt.Errorf("touch resource: %w", err)
	}
	return nil
}

func (h *ResourceHandler) requireExists(ctx context.Context, tx *sql.Tx, id string) error {
	exists, err := resourceExists(ctx, tx, h.resourceType.Name, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound(h.resourceType.Name, id)
	}
	return nil
}

func resourceExists(ctx context.Context, tx *sql.Tx, resourceType, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM resources WHERE resource_type = ? AND id = ?`,
		resourceType, id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check resource %s/%s: %w", resourceType, id, err)
	}
	return true, nil
}
