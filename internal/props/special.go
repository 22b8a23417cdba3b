package props

import (
	"fmt"
	"strings"
)

// Special is a property whose value is a stateful object rather than a plain
// scalar. Specials are materialized lazily on first access and must
// re-serialize into the raw data after every mutation; an unflushed special
// is not durable.
type Special interface {
	// Set applies a raw or user-provided value to the property's state.
	Set(v Value) error

	// String serializes the current state into the raw on-disk form.
	String() string
}

// SpecialFactory constructs the special property registered for a name.
type SpecialFactory func(s *Store) Special

func (s *Store) registerSpecials() {
	s.factories["resolver"] = func(s *Store) Special { return &Resolver{} }
}

// RegisterSpecial makes name a special property backed by factory.
func (s *Store) RegisterSpecial(name string, factory SpecialFactory) {
	s.factories[name] = factory
}

// SpecialProperty materializes and caches the special property for name,
// seeding it from the raw data when a value exists.
func (s *Store) SpecialProperty(name string) (Special, error) {
	factory, ok := s.factories[name]
	if !ok {
		return nil, &NotFoundError{Property: name}
	}
	if sp, ok := s.specials[name]; ok {
		return sp, nil
	}

	sp := factory(s)
	if v, ok := s.data.Get(name); ok {
		if err := sp.Set(v); err != nil {
			return nil, fmt.Errorf("materialize property %q: %w", name, err)
		}
	}
	s.specials[name] = sp
	return sp, nil
}

// AttachSpecial attaches an externally constructed special property and
// flushes its state into the raw data.
func (s *Store) AttachSpecial(name string, sp Special) {
	if _, ok := s.factories[name]; !ok {
		s.factories[name] = func(*Store) Special { return sp }
	}
	s.specials[name] = sp
	s.flushSpecial(name)
}

// UpdateSpecial re-serializes a materialized special property into the raw
// data. It reports whether the property was materialized at all.
func (s *Store) UpdateSpecial(name string) bool {
	if _, ok := s.specials[name]; !ok {
		return false
	}
	s.flushSpecial(name)
	return true
}

func (s *Store) flushSpecial(name string) {
	s.data.Set(name, String(s.specials[name].String()))
}

// Resolver is the resolver special property: either the path of a resolv
// conf file to copy into the jail, or a list of nameserver entries separated
// by ';'.
type Resolver struct {
	entries []string
}

var _ Special = (*Resolver)(nil)

func (r *Resolver) Set(v Value) error {
	switch v.Kind() {
	case KindNull:
		r.entries = nil
		return nil
	case KindList:
		r.entries = v.AsList()
		return nil
	case KindString:
		r.entries = strings.Split(v.String(), ";")
		return nil
	}
	return &InvalidValueError{
		Property: "resolver", Value: v.String(),
		Reason: "expected a file path or a ';' separated entry list",
	}
}

func (r *Resolver) String() string { return strings.Join(r.entries, ";") }

func (r *Resolver) Entries() []string { return r.entries }

// IsFilePath reports whether the resolver references an existing resolv.conf
// style file instead of literal entries.
func (r *Resolver) IsFilePath() bool {
	return len(r.entries) == 1 && strings.HasPrefix(r.entries[0], "/")
}
