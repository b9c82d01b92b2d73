package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spic/internal/domain"
)

func TestDefault_LoadsAllTypes(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 113, c.Size())

	want := map[domain.OperationType]int{
		domain.OperationOPP:     45,
		domain.OperationVEFA:    22,
		domain.OperationAMO:     22,
		domain.OperationMandate: 24,
	}
	for typ, n := range want {
		list, err := c.For(typ)
		require.NoError(t, err)
		assert.Len(t, list, n, "type=%s", typ)
		for i, p := range list {
			assert.Equal(t, i+1, p.Order, "type=%s", typ)
		}
	}
}

func TestDefault_KnownEntries(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	opp, err := c.For(domain.OperationOPP)
	require.NoError(t, err)
	assert.Equal(t, 1, opp[0].ID)
	assert.True(t, opp[0].Primary)
	assert.Equal(t, 30, opp[0].MaxDays)

	vefa, err := c.For(domain.OperationVEFA)
	require.NoError(t, err)
	assert.Equal(t, 46, vefa[0].ID)
}

func TestFor_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	a, _ := c.For(domain.OperationAMO)
	a[0].Name = "mutated"
	b, _ := c.For(domain.OperationAMO)
	assert.NotEqual(t, "mutated", b[0].Name)
}

func TestFor_UnknownType(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	_, err = c.For("HOUSING")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_RejectsBrokenCatalog(t *testing.T) {
	doc := []byte(`
types:
  OPP:
    - {id: 1, name: "A", order: 1, min_days: 5, max_days: 2}
    - {id: 1, name: "", order: 3, min_days: 1, max_days: 2}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate id 1")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "missing 2")
	assert.Contains(t, msg, "type VEFA")
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("types: [unclosed"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
