package mirror

import (
	"fmt"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
)

// Well-known names beneath a table prefix. The two retention folders
// are written by the ingestion side and only ever read and emptied by
// the janitor; the writer never touches them.
const (
	MetadataFileName         = "_metadata.json"
	ProcessedFilesFolder     = "_ProcessedFiles"
	FilesReadyToDeleteFolder = "_FilesReadyToDelete"

	landingZoneRoot = "Files/LandingZone"
	schemaDirSuffix = ".schema"
)

// TableID identifies a mirrored table inside a workspace. It is a
// value type: construct once per logical source table, compare with ==.
// Schema is optional; when empty the schema path segment is omitted.
type TableID struct {
	Workspace string
	Database  string
	Schema    string
	Table     string
}

// NewTableID builds an identity for a table without a schema.
func NewTableID(workspace, database, table string) TableID {
	return TableID{Workspace: workspace, Database: database, Table: table}
}

// NewTableIDWithSchema builds an identity for a schema-qualified table.
func NewTableIDWithSchema(workspace, database, schema, table string) TableID {
	return TableID{Workspace: workspace, Database: database, Schema: schema, Table: table}
}

// Validate checks the identity names the minimum of database and table.
func (id TableID) Validate() error {
	if id.Database == "" {
		return errors.New(ErrInvalidTableID, "mirrored database name is required", nil)
	}
	if id.Table == "" {
		return errors.New(ErrInvalidTableID, "table name is required", nil).AddContext("database", id.Database)
	}
	return nil
}

// Prefix returns the canonical landing-zone prefix for the table:
// <database>/Files/LandingZone/[<schema>.schema/]<table>/
func (id TableID) Prefix() string {
	if id.Schema != "" {
		return store.Join(id.Database, landingZoneRoot, id.Schema+schemaDirSuffix, id.Table) + "/"
	}
	return store.Join(id.Database, landingZoneRoot, id.Table) + "/"
}

// MetadataPath returns the key of the table's key-column descriptor.
func (id TableID) MetadataPath() string {
	return id.Prefix() + MetadataFileName
}

func (id TableID) String() string {
	if id.Schema != "" {
		return fmt.Sprintf("%s.%s.%s", id.Database, id.Schema, id.Table)
	}
	return fmt.Sprintf("%s.%s", id.Database, id.Table)
}
