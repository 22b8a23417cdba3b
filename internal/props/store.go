// Package props implements the layered jail configuration property store: a
// raw, always-serializable property map with per-key accessor pairs, special
// (stateful) properties and an optional defaults layer. It is the in-memory
// model behind every config file format the resource layer can read.
package props

import (
	"fmt"
	"sort"
)

type getter func() (Value, error)

type setter func(v Value) error

// accessor translates between the raw on-disk representation of a property
// and its richer in-memory type. Either side may be nil.
type accessor struct {
	get getter
	set setter
}

// Store maps property names to values. Reads and writes go through the
// accessor registry where one is registered, through the special property
// registry for stateful properties, and fall through to the raw data
// otherwise.
type Store struct {
	data      backing
	accessors map[string]accessor
	factories map[string]SpecialFactory
	specials  map[string]Special
}

func NewStore() *Store { return newStore(NewRawData()) }

func newStore(data backing) *Store {
	s := &Store{
		data:      data,
		factories: make(map[string]SpecialFactory),
		specials:  make(map[string]Special),
	}
	s.registerAccessors()
	s.registerSpecials()
	return s
}

// Get resolves a property: registered getter first, then materialized
// special properties, then the raw data. Unknown names fail with
// *NotFoundError; a present null value does not.
func (s *Store) Get(name string) (Value, error) {
	if acc, ok := s.accessors[name]; ok && acc.get != nil {
		return acc.get()
	}

	if _, ok := s.factories[name]; ok && s.data.Has(name) {
		// materialize so malformed encodings surface on first access
		if _, err := s.SpecialProperty(name); err != nil {
			return Value{}, err
		}
		v, _ := s.data.Get(name)
		return v, nil
	}

	if v, ok := s.data.Get(name); ok {
		return v, nil
	}
	return Value{}, &NotFoundError{Property: name}
}

// GetString returns the canonical string form of a property.
func (s *Store) GetString(name string) (string, error) {
	v, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Set normalizes value through ParseUserInput and dispatches it. It reports
// whether the effective value changed, comparing both presence in the
// persisted projection and the serialized form before and after. Callers use
// the result to decide whether a save is due.
func (s *Store) Set(name string, value any) (bool, error) {
	v, err := ParseUserInput(value)
	if err != nil {
		return false, &InvalidValueError{
			Property: name, Value: value, Reason: err.Error(),
		}
	}

	existedBefore := s.data.UserHas(name)
	fpBefore, hadBefore := s.fingerprint(name)

	if err := s.setItem(name, v); err != nil {
		return false, err
	}

	if existedBefore != s.data.UserHas(name) {
		return true, nil
	}
	fpAfter, hasAfter := s.fingerprint(name)
	return fpBefore != fpAfter || hadBefore != hasAfter, nil
}

func (s *Store) fingerprint(name string) (string, bool) {
	v, err := s.Get(name)
	if err != nil {
		return "", false
	}
	return v.String(), true
}

func (s *Store) setItem(name string, v Value) error {
	if _, ok := s.factories[name]; ok {
		sp, err := s.SpecialProperty(name)
		if err != nil {
			return err
		} else if err := sp.Set(v); err != nil {
			return err
		}
		s.flushSpecial(name)
		return nil
	}

	if acc, ok := s.accessors[name]; ok && acc.set != nil {
		return acc.set(v)
	}

	s.data.Set(name, v)
	return nil
}

// Delete removes a property. Behind a defaults layer this reverts defaulted
// keys to their default instead.
func (s *Store) Delete(name string) error {
	if err := s.data.Delete(name); err != nil {
		return err
	}
	delete(s.specials, name)
	return nil
}

// Clone bulk-applies data. When the store already has an identity, incoming
// id/name/uuid keys are overridden to the existing identity, so a bulk import
// can never rename a jail. With skipOnError properties that fail to apply are
// skipped instead of aborting the whole import.
func (s *Store) Clone(data map[string]any, skipOnError bool) error {
	if len(data) == 0 {
		return nil
	}

	currentID := s.CurrentID()
	for _, key := range sortedMapKeys(data) {
		value := data[key]
		if currentID != "" && isIdentityKey(key) {
			value = currentID
		}
		if _, err := s.Set(key, value); err != nil {
			if skipOnError {
				continue
			}
			return fmt.Errorf("set property %q: %w", key, err)
		}
	}
	return nil
}

// Read applies file data. Unlike Clone it drops incoming identity keys
// entirely when an identity is already set: the existing identity always wins
// over file contents.
func (s *Store) Read(data map[string]any) error {
	if s.CurrentID() != "" {
		clean := make(map[string]any, len(data))
		for key, value := range data {
			if !isIdentityKey(key) {
				clean[key] = value
			}
		}
		data = clean
	}
	return s.Clone(data, false)
}

// CurrentID returns the stable identity, or "" when none is set.
func (s *Store) CurrentID() string {
	v, err := s.Get("id")
	if err != nil || v.IsNull() {
		return ""
	}
	return v.String()
}

func isIdentityKey(key string) bool {
	return key == "id" || key == "name" || key == "uuid"
}

// Keys returns all property names present in the effective view, sorted.
func (s *Store) Keys() []string {
	keys := s.data.Keys()
	sort.Strings(keys)
	return keys
}

// UserKeys returns the keys of the persisted projection in serialization
// order. For a plain store that is every raw key; behind a defaults layer
// only explicitly set keys.
func (s *Store) UserKeys() []string { return s.data.UserKeys() }

// UserData returns the persisted projection. Defaults are never
// re-serialized.
func (s *Store) UserData() map[string]Value {
	keys := s.data.UserKeys()
	data := make(map[string]Value, len(keys))
	for _, name := range keys {
		if v, ok := s.data.Get(name); ok {
			data[name] = v
		}
	}
	return data
}

func sortedMapKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
