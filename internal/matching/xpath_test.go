package matching

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addressXML = `<address id="45">
  <street>Main Road</street>
  <inhabitant name="Chris"/>
</address>`

func TestMatchXPath(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]string
		want       int
	}{
		{"element text", map[string]string{"/address/street": "Main Road"}, 1},
		{"descendant search", map[string]string{"//street": "Main Road"}, 1},
		{"attribute", map[string]string{"/address/inhabitant/@name": "Chris"}, 1},
		{"root attribute", map[string]string{"/address/@id": "45"}, 1},
		{"mismatch", map[string]string{"/address/street": "High Street"}, 0},
		{"missing element", map[string]string{"/address/postcode": ""}, 0},
		{
			name: "mixed",
			conditions: map[string]string{
				"/address/street":           "Main Road",
				"/address/inhabitant/@name": "Bob",
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchXPath(tt.conditions, []byte(addressXML)))
		})
	}
}

func TestMatchXPath_NotXML(t *testing.T) {
	assert.Equal(t, 0, MatchXPath(map[string]string{"/a": "b"}, []byte(`{"a": "b"}`)))
}

func TestExtractXPath(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(addressXML))

	value, ok := ExtractXPath(doc, "/address/inhabitant/@name")
	assert.True(t, ok)
	assert.Equal(t, "Chris", value)

	_, ok = ExtractXPath(doc, "/address/inhabitant/@age")
	assert.False(t, ok)

	_, ok = ExtractXPath(nil, "/address")
	assert.False(t, ok)
}
