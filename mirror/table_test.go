package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableIDPrefixWithoutSchema(t *testing.T) {
	id := NewTableID("ws", "SalesDB", "Orders")

	assert.Equal(t, "SalesDB/Files/LandingZone/Orders/", id.Prefix())
	assert.Equal(t, "SalesDB/Files/LandingZone/Orders/_metadata.json", id.MetadataPath())
	assert.Equal(t, "SalesDB.Orders", id.String())
}

func TestTableIDPrefixWithSchema(t *testing.T) {
	id := NewTableIDWithSchema("ws", "SalesDB", "MySchema", "Orders")

	assert.Equal(t, "SalesDB/Files/LandingZone/MySchema.schema/Orders/", id.Prefix())
	assert.Equal(t, "SalesDB.MySchema.Orders", id.String())

	// The schema layout must be distinct from the no-schema layout.
	assert.NotEqual(t, NewTableID("ws", "SalesDB", "Orders").Prefix(), id.Prefix())
}

func TestTableIDEquality(t *testing.T) {
	a := NewTableIDWithSchema("ws", "db", "s", "t")
	b := NewTableIDWithSchema("ws", "db", "s", "t")
	c := NewTableID("ws", "db", "t")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestTableIDValidate(t *testing.T) {
	require.NoError(t, NewTableID("", "db", "t").Validate())

	err := NewTableID("ws", "", "t").Validate()
	assert.Error(t, err)

	err = NewTableID("ws", "db", "").Validate()
	assert.Error(t, err)
}
