package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type resourceDef struct {
	resourceType string
	id           string
	attributes   map[string]any
}

type linkDef struct {
	fromType     string
	fromID       string
	relationship string
	toType       string
	toID         string
	position     int
}

const (
	seedTrackBlueTrain = "5fe17c57-b1b6-4c8e-a711-09dcc7a447a4"
	seedTrackSpiral    = "9b83a0b9-1f4b-4c0a-8d5c-3f62e1c0aa27"
)

var seedResources = []resourceDef{
	{resourceType: "companies", id: "1", attributes: map[string]any{
		"name":               "Blue Note Records",
		"countryOfResidence": "United States",
	}},
	{resourceType: "companies", id: "2", attributes: map[string]any{
		"name":               "ECM Records",
		"countryOfResidence": "Germany",
	}},
	{resourceType: "performers", id: "1", attributes: map[string]any{
		"artistName": "John Coltrane",
		"bornAt":     "1926-09-23",
	}},
	{resourceType: "performers", id: "2", attributes: map[string]any{
		"artistName": "Lee Morgan",
		"bornAt":     "1938-07-10",
	}},
	{resourceType: "tracks", id: seedTrackBlueTrain, attributes: map[string]any{
		"title":           "Blue Train",
		"lengthInSeconds": 643,
		"genre":           "Hard bop",
		"releasedAt":      "1958-01-01",
	}},
	{resourceType: "tracks", id: seedTrackSpiral, attributes: map[string]any{
		"title":           "Spiral",
		"lengthInSeconds": 359,
		"genre":           "Hard bop",
		"releasedAt":      "1958-01-01",
	}},
	{resourceType: "playlists", id: "1", attributes: map[string]any{
		"name": "Late Night Horns",
	}},
}

var seedLinks = []linkDef{
	{fromType: "companies", fromID: "1", relationship: "tracks", toType: "tracks", toID: seedTrackBlueTrain, position: 0},
	{fromType: "companies", fromID: "1", relationship: "tracks", toType: "tracks", toID: seedTrackSpiral, position: 1},
	{fromType: "tracks", fromID: seedTrackBlueTrain, relationship: "ownedBy", toType: "companies", toID: "1", position: 0},
	{fromType: "tracks", fromID: seedTrackBlueTrain, relationship: "performers", toType: "performers", toID: "1", position: 0},
	{fromType: "tracks", fromID: seedTrackBlueTrain, relationship: "performers", toType: "performers", toID: "2", position: 1},
	{fromType: "tracks", fromID: seedTrackSpiral, relationship: "ownedBy", toType: "companies", toID: "1", position: 0},
	{fromType: "tracks", fromID: seedTrackSpiral, relationship: "performers", toType: "performers", toID: "1", position: 0},
	{fromType: "playlists", fromID: "1", relationship: "tracks", toType: "tracks", toID: seedTrackSpiral, position: 0},
	{fromType: "playlists", fromID: "1", relationship: "tracks", toType: "tracks", toID: seedTrackBlueTrain, position: 1},
}

// seedCounters keeps integer identity assignment clear of the seeded ids.
var seedCounters = map[string]int64{
	"companies":  2,
	"performers": 2,
	"playlists":  1,
}

// Seed inserts the demo catalog if the database holds no resources yet. It
// is idempotent: a non-empty database is left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return fmt.Errorf("count resources: %w", err)
	}
	if count > 0 {
		return nil
	}

	ts := "2024-01-01T00:00:00.000Z"
	for _, rd := range seedResources {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO resources (resource_type, id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			rd.resourceType, rd.id, ts, ts,
		); err != nil {
			return fmt.Errorf("insert %s/%s: %w", rd.resourceType, rd.id, err)
		}
		for name, value := range rd.attributes {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode %s/%s %s: %w", rd.resourceType, rd.id, name, err)
			}
			if _, err := db.ExecContext(ctx,
				`INSERT INTO attribute_values (resource_type, resource_id, name, value) VALUES (?, ?, ?, ?)`,
				rd.resourceType, rd.id, name, string(encoded),
			); err != nil {
				return fmt.Errorf("insert attribute %s/%s %s: %w", rd.resourceType, rd.id, name, err)
			}
		}
	}

	for _, ld := range seedLinks {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO relationship_links (from_type, from_id, relationship, to_type, to_id, position) VALUES (?, ?, ?, ?, ?, ?)`,
			ld.fromType, ld.fromID, ld.relationship, ld.toType, ld.toID, ld.position,
		); err != nil {
			return fmt.Errorf("insert link %s/%s %s: %w", ld.fromType, ld.fromID, ld.relationship, err)
		}
	}

	for resourceType, value := range seedCounters {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO id_counters (resource_type, value) VALUES (?, ?)`,
			resourceType, value,
		); err != nil {
			return fmt.Errorf("insert counter %s: %w", resourceType, err)
		}
	}

	return nil
}
