package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_SetMetadata(t *testing.T) {
	log := &AuditLog{Action: AuditActionLogin, Resource: "auth"}

	log.SetMetadata("old_role", RoleCustomer)
	log.SetMetadata("new_role", RoleAdmin)

	assert.Equal(t, RoleCustomer, log.Metadata["old_role"])
	assert.Equal(t, RoleAdmin, log.Metadata["new_role"])
}

func TestJSONBMap_Value(t *testing.T) {
	m := JSONBMap{"key": "value", "count": 3}

	value, err := m.Value()
	require.NoError(t, err)

	str, ok := value.(string)
	require.True(t, ok)
	assert.Contains(t, str, `"key":"value"`)
}

func TestJSONBMap_Value_Empty(t *testing.T) {
	var m JSONBMap

	value, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, value, "empty maps are stored as NULL")
}

func TestJSONBMap_Scan(t *testing.T) {
	var m JSONBMap
	require.NoError(t, m.Scan(`{"action":"login","attempts":2}`))

	assert.Equal(t, "login", m["action"])
	assert.EqualValues(t, 2, m["attempts"])
}

func TestJSONBMap_Scan_Bytes(t *testing.T) {
	var m JSONBMap
	require.NoError(t, m.Scan([]byte(`{"key":"value"}`)))
	assert.Equal(t, "value", m["key"])
}

func TestJSONBMap_Scan_Nil(t *testing.T) {
	var m JSONBMap
	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)
}

func TestJSONBMap_Scan_UnsupportedType(t *testing.T) {
	var m JSONBMap
	assert.Error(t, m.Scan(42))
}

func TestJSONBMap_RoundTrip(t *testing.T) {
	original := JSONBMap{"ip": "203.0.113.5", "locked": true}

	value, err := original.Value()
	require.NoError(t, err)

	var restored JSONBMap
	require.NoError(t, restored.Scan(value))

	assert.Equal(t, "203.0.113.5", restored["ip"])
	assert.Equal(t, true, restored["locked"])
}
