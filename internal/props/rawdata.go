package props

import (
	"slices"
	"sort"
)

// backing is the storage behind a Store. The plain implementation is RawData;
// DefaultsStore substitutes defaultsData, which layers an immutable defaults
// table underneath and tracks which keys a user set explicitly.
type backing interface {
	Get(name string) (Value, bool)
	Set(name string, v Value)
	Delete(name string) error
	Has(name string) bool
	Keys() []string

	// UserKeys returns the keys of the persisted projection, in serialization
	// order.
	UserKeys() []string
	UserHas(name string) bool
}

// RawData is an insertion-ordered property map. It replaces ad-hoc container
// semantics with explicit methods so adapters and the defaults layer can be
// type checked.
type RawData struct {
	keys []string
	m    map[string]Value
}

func NewRawData() *RawData {
	return &RawData{m: make(map[string]Value)}
}

var _ backing = (*RawData)(nil)

func (r *RawData) Get(name string) (Value, bool) {
	v, ok := r.m[name]
	return v, ok
}

func (r *RawData) Set(name string, v Value) {
	if _, ok := r.m[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.m[name] = v
}

func (r *RawData) Delete(name string) error {
	if _, ok := r.m[name]; !ok {
		return &NotFoundError{Property: name}
	}
	delete(r.m, name)
	r.keys = slices.DeleteFunc(r.keys,
		func(k string) bool { return k == name })
	return nil
}

func (r *RawData) Has(name string) bool {
	_, ok := r.m[name]
	return ok
}

func (r *RawData) Keys() []string { return slices.Clone(r.keys) }

func (r *RawData) UserKeys() []string { return r.Keys() }

func (r *RawData) UserHas(name string) bool { return r.Has(name) }

// defaultsData merges an immutable defaults table with user-set keys. Only
// the user-set keys are persisted; deleting one reverts it to its default.
//
// The user-set tracking is strictly per instance. (An earlier incarnation of
// this layer shared the tracking set between instances, which corrupted the
// persisted projection as soon as two defaults-backed configs coexisted.)
type defaultsData struct {
	raw      *RawData
	defaults map[string]Value
	userKeys map[string]struct{}
}

func newDefaultsData(defaults map[string]Value) *defaultsData {
	return &defaultsData{
		raw:      NewRawData(),
		defaults: defaults,
		userKeys: make(map[string]struct{}),
	}
}

var _ backing = (*defaultsData)(nil)

func (d *defaultsData) Get(name string) (Value, bool) {
	if v, ok := d.raw.Get(name); ok {
		return v, true
	}
	v, ok := d.defaults[name]
	return v, ok
}

func (d *defaultsData) Set(name string, v Value) {
	d.raw.Set(name, v)
	d.userKeys[name] = struct{}{}
}

func (d *defaultsData) Delete(name string) error {
	if _, ok := d.userKeys[name]; !ok {
		return &NotFoundError{Property: name}
	}
	delete(d.userKeys, name)

	if def, ok := d.defaults[name]; ok {
		// revert to the default instead of removing the key
		d.raw.Set(name, def)
		return nil
	}
	return d.raw.Delete(name)
}

func (d *defaultsData) Has(name string) bool {
	if d.raw.Has(name) {
		return true
	}
	_, ok := d.defaults[name]
	return ok
}

func (d *defaultsData) Keys() []string {
	keys := make([]string, 0, len(d.defaults)+len(d.userKeys))
	for name := range d.defaults {
		keys = append(keys, name)
	}
	for _, name := range d.raw.Keys() {
		if _, ok := d.defaults[name]; !ok {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

func (d *defaultsData) UserKeys() []string {
	keys := make([]string, 0, len(d.userKeys))
	for _, name := range d.raw.Keys() {
		if _, ok := d.userKeys[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

func (d *defaultsData) UserHas(name string) bool {
	_, ok := d.userKeys[name]
	return ok
}
