package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsStore_mergedView(t *testing.T) {
	d := NewDefaultsStore()

	v, err := d.Get("mac_prefix")
	require.NoError(t, err)
	assert.Equal(t, "02ff60", v.String())

	v, err = d.Get("vnet")
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)
}

func TestDefaultsStore_exclusiveUserData(t *testing.T) {
	d := NewDefaultsStore()
	assert.Empty(t, d.ExclusiveUserData(), "fresh store persists nothing")

	_, err := d.Set("vnet", "on")
	require.NoError(t, err)
	_, err = d.Set("custom_key", "custom")
	require.NoError(t, err)

	data := d.ExclusiveUserData()
	assert.Len(t, data, 2)
	assert.Equal(t, String("on"), data["vnet"])
	assert.Equal(t, String("custom"), data["custom_key"])
}

func TestDefaultsStore_deleteRevertsToDefault(t *testing.T) {
	d := NewDefaultsStore()
	_, err := d.Set("securelevel", "3")
	require.NoError(t, err)

	v, err := d.Get("securelevel")
	require.NoError(t, err)
	assert.Equal(t, "3", v.String())

	require.NoError(t, d.Delete("securelevel"))

	v, err = d.Get("securelevel")
	require.NoError(t, err)
	assert.Equal(t, "2", v.String(), "default is visible again")
	assert.Empty(t, d.ExclusiveUserData())
}

func TestDefaultsStore_deleteUnsetKey(t *testing.T) {
	d := NewDefaultsStore()
	err := d.Delete("securelevel")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound,
		"a defaulted key the user never set cannot be deleted")
}

func TestDefaultsStore_perInstanceTracking(t *testing.T) {
	a := NewDefaultsStore()
	b := NewDefaultsStore()

	_, err := a.Set("vnet", "on")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ExclusiveUserData())
	assert.Empty(t, b.ExclusiveUserData(),
		"user tracking must not leak between instances")
}

func TestDefaultsStore_setDefaultValueStillPersists(t *testing.T) {
	d := NewDefaultsStore()

	changed, err := d.Set("securelevel", "2")
	require.NoError(t, err)
	assert.True(t, changed, "pinning a default is a persisted change")
	assert.Equal(t, String("2"), d.ExclusiveUserData()["securelevel"])
}

func TestDefaultsStore_resolverDefault(t *testing.T) {
	d := NewDefaultsStore()

	sp, err := d.SpecialProperty("resolver")
	require.NoError(t, err)
	r := sp.(*Resolver)
	assert.True(t, r.IsFilePath())
	assert.Equal(t, []string{"/etc/resolv.conf"}, r.Entries())
}

func TestDefaultsStore_userKeysKeepOrder(t *testing.T) {
	d := NewDefaultsStore()
	for _, kv := range [][2]string{
		{"vnet", "on"}, {"boot", "yes"}, {"securelevel", "3"},
	} {
		_, err := d.Set(kv[0], kv[1])
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"vnet", "boot", "securelevel"}, d.UserKeys())
}

func TestNewDefaults_freshMapPerCall(t *testing.T) {
	a := NewDefaults()
	a["securelevel"] = String("0")
	assert.Equal(t, String("2"), NewDefaults()["securelevel"])
}
