// Package catalog declares the music-catalog resource types the server ships
// with: performers, companies, tracks, and playlists.
package catalog

import "github.com/mwhitworth/stagehand/internal/schema"

// Types are the shipped resource-type descriptors, in registration order.
func Types() []*schema.ResourceType {
	return []*schema.ResourceType{
		{
			Name:   "performers",
			IDKind: schema.IDInt64,
			Attributes: []schema.Attribute{
				{Name: "artistName", Caps: schema.CapCreate | schema.CapUpdate, Required: true, MaxLength: 100},
				{Name: "bornAt", Caps: schema.CapCreate | schema.CapUpdate},
			},
		},
		{
			Name:   "companies",
			IDKind: schema.IDInt64,
			Attributes: []schema.Attribute{
				{Name: "name", Caps: schema.CapCreate | schema.CapUpdate, Required: true, MaxLength: 40},
				{Name: "countryOfResidence", Caps: schema.CapCreate | schema.CapUpdate},
			},
			Relationships: []schema.Relationship{
				{Name: "tracks", Kind: schema.ToMany, Target: "tracks", Caps: schema.CapCreate | schema.CapUpdate},
			},
		},
		{
			Name:      "tracks",
			IDKind:    schema.IDUUID,
			ClientIDs: true,
			Attributes: []schema.Attribute{
				{Name: "title", Caps: schema.CapCreate | schema.CapUpdate, Required: true, MaxLength: 100},
				{Name: "lengthInSeconds", Caps: schema.CapCreate | schema.CapUpdate},
				{Name: "genre", Caps: schema.CapCreate | schema.CapUpdate},
				// releasedAt may only be supplied on create.
				{Name: "releasedAt", Caps: schema.CapCreate},
			},
			Relationships: []schema.Relationship{
				{Name: "ownedBy", Kind: schema.ToOne, Target: "companies", Caps: schema.CapCreate | schema.CapUpdate},
				{Name: "performers", Kind: schema.ToMany, Target: "performers", Caps: schema.CapCreate | schema.CapUpdate},
			},
		},
		{
			Name:   "playlists",
			IDKind: schema.IDInt64,
			Attributes: []schema.Attribute{
				{Name: "name", Caps: schema.CapCreate | schema.CapUpdate, Required: true, MaxLength: 50},
			},
			Relationships: []schema.Relationship{
				{Name: "tracks", Kind: schema.ToMany, Target: "tracks", Caps: schema.CapCreate | schema.CapUpdate},
			},
		},
	}
}

// NewRegistry builds the schema registry for the shipped catalog.
func NewRegistry() (*schema.Registry, error) {
	return schema.NewRegistry(Types()...)
}
