package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_identityAliases(t *testing.T) {
	s := NewStore()
	changed, err := s.Set("name", "web01")
	require.NoError(t, err)
	assert.True(t, changed)

	for _, alias := range []string{"id", "name", "uuid"} {
		v, err := s.Get(alias)
		require.NoError(t, err)
		assert.Equal(t, "web01", v.String(), alias)
	}
	assert.Equal(t, "web01", s.CurrentID())
}

func TestStore_identityValidation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "plain", id: "web01"},
		{name: "dotted", id: "web01.prod"},
		{name: "uuid", id: "0d1679ba-9a30-466c-b0b5-9d9cb1d3cb64"},
		{name: "slash", id: "web/01", wantErr: true},
		{name: "space", id: "web 01", wantErr: true},
		{name: "empty stays null", id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			_, err := s.Set("id", tt.id)
			if tt.wantErr {
				var invalid *InvalidNameError
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStore_setSameIdentityIsNoop(t *testing.T) {
	s := NewStore()
	_, err := s.Set("id", "web01")
	require.NoError(t, err)

	changed, err := s.Set("uuid", "web01")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_typeDerivation(t *testing.T) {
	tests := []struct {
		name     string
		setup    map[string]any
		wantType string
	}{
		{name: "plain jail", setup: nil, wantType: "jail"},
		{
			name:     "basejail flag",
			setup:    map[string]any{"basejail": "yes"},
			wantType: "basejail",
		},
		{
			name:     "clonejail flag",
			setup:    map[string]any{"clonejail": "on"},
			wantType: "clonejail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.Clone(tt.setup, false))
			v, err := s.Get("type")
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, v.String())
		})
	}
}

func TestStore_setTypeUpdatesFlags(t *testing.T) {
	s := NewStore()
	_, err := s.Set("type", "basejail")
	require.NoError(t, err)

	v, err := s.Get("basejail")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = s.Get("basejail_type")
	require.NoError(t, err)
	assert.Equal(t, "nullfs", v.String())

	// the raw key keeps the generic type
	raw, ok := s.data.Get("type")
	require.True(t, ok)
	assert.Equal(t, "jail", raw.String())
}

func TestStore_tagAndTagsExclusive(t *testing.T) {
	s := NewStore()
	_, err := s.Set("tags", []string{"prod", "web"})
	require.NoError(t, err)

	v, err := s.Get("tag")
	require.NoError(t, err)
	assert.Equal(t, "prod", v.String())

	// setting a single tag moves it to the front of the list
	_, err = s.Set("tag", "web")
	require.NoError(t, err)
	v, err = s.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "prod"}, v.AsList())
	assert.False(t, s.data.Has("tag"))
}

func TestStore_legacyTagUpgrade(t *testing.T) {
	s := NewStore()
	_, err := s.Set("tag", "legacy")
	require.NoError(t, err)
	assert.True(t, s.data.Has("tag"))

	_, err = s.Set("tags", []string{"prod"})
	require.NoError(t, err)
	assert.False(t, s.data.Has("tag"), "tags must retire the legacy key")
}

func TestStore_cloneProtectsIdentity(t *testing.T) {
	s := NewStore()
	_, err := s.Set("id", "web01")
	require.NoError(t, err)

	err = s.Clone(map[string]any{
		"name": "evil",
		"boot": "yes",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "web01", s.CurrentID())
	v, err := s.Get("boot")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestStore_readDropsIdentityKeys(t *testing.T) {
	s := NewStore()
	_, err := s.Set("id", "web01")
	require.NoError(t, err)

	require.NoError(t, s.Read(map[string]any{
		"uuid":     "other",
		"priority": 10,
	}))
	assert.Equal(t, "web01", s.CurrentID())

	v, err := s.Get("priority")
	require.NoError(t, err)
	assert.Equal(t, Int(10), v)
}

func TestStore_cloneSkipOnError(t *testing.T) {
	s := NewStore()
	data := map[string]any{
		"vnet": "garbage",
		"boot": "yes",
	}

	require.Error(t, s.Clone(data, false))

	s = NewStore()
	require.NoError(t, s.Clone(data, true))
	v, err := s.Get("boot")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestStore_setReportsChange(t *testing.T) {
	s := NewStore()

	changed, err := s.Set("boot", "yes")
	require.NoError(t, err)
	assert.True(t, changed, "first set creates the key")

	changed, err = s.Set("boot", "yes")
	require.NoError(t, err)
	assert.False(t, changed, "same value again")

	changed, err = s.Set("boot", true)
	require.NoError(t, err)
	assert.False(t, changed, "same value, different input shape")

	changed, err = s.Set("boot", "no")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStore_getUnknownProperty(t *testing.T) {
	s := NewStore()
	_, err := s.Get("no_such_property")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no_such_property", notFound.Property)
}

func TestStore_resolverSpecial(t *testing.T) {
	s := NewStore()
	_, err := s.Set("resolver", "nameserver 8.8.8.8;nameserver 1.1.1.1")
	require.NoError(t, err)

	sp, err := s.SpecialProperty("resolver")
	require.NoError(t, err)
	r := sp.(*Resolver)
	assert.Equal(t,
		[]string{"nameserver 8.8.8.8", "nameserver 1.1.1.1"}, r.Entries())
	assert.False(t, r.IsFilePath())

	v, err := s.Get("resolver")
	require.NoError(t, err)
	assert.Equal(t, "nameserver 8.8.8.8;nameserver 1.1.1.1", v.String())
}

func TestStore_resolverFilePath(t *testing.T) {
	s := NewStore()
	_, err := s.Set("resolver", "/etc/resolv.conf")
	require.NoError(t, err)

	sp, err := s.SpecialProperty("resolver")
	require.NoError(t, err)
	assert.True(t, sp.(*Resolver).IsFilePath())
}

func TestStore_routerNoneMapsToNull(t *testing.T) {
	s := NewStore()
	_, err := s.Set("defaultrouter", "10.0.0.1")
	require.NoError(t, err)
	v, err := s.Get("defaultrouter")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", v.String())

	_, err = s.Set("defaultrouter", nil)
	require.NoError(t, err)
	v, err = s.Get("defaultrouter")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestStore_loginFlagsDefault(t *testing.T) {
	s := NewStore()
	v, err := s.Get("login_flags")
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "root"}, v.AsList())

	_, err = s.Set("login_flags", []string{"-f", "admin"})
	require.NoError(t, err)
	v, err = s.Get("login_flags")
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "admin"}, v.AsList())
}

func TestStore_clonedReleaseFallback(t *testing.T) {
	s := NewStore()
	_, err := s.Set("release", "13.2-RELEASE")
	require.NoError(t, err)

	v, err := s.Get("cloned_release")
	require.NoError(t, err)
	assert.Equal(t, "13.2-RELEASE", v.String())
}

func TestStore_userDataRoundTrip(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Clone(map[string]any{
		"id":   "web01",
		"boot": "yes",
	}, false))

	data := s.UserData()
	assert.Equal(t, String("web01"), data["id"])
	assert.Equal(t, Bool(true), data["boot"])
}
