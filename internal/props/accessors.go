package props

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// The accessor registry is populated once at construction. Every property
// with a non-trivial on-disk representation gets an explicit get/set pair
// here; everything else passes through to the raw data.
func (s *Store) registerAccessors() {
	identity := accessor{get: s.getID, set: s.setID}
	s.accessors = map[string]accessor{
		"id":   identity,
		"name": identity,
		"uuid": identity,

		"type":          {get: s.getType, set: s.setType},
		"tag":           {get: s.getTag, set: s.setTag},
		"tags":          {get: s.getTags, set: s.setTags},
		"basejail":      {get: s.boolGetter("basejail"), set: s.boolSetter("basejail")},
		"clonejail":     {get: s.boolGetter("clonejail"), set: s.boolSetter("clonejail")},
		"basejail_type": {get: s.getBasejailType},
		"priority":      {get: s.getPriority, set: s.setPriority},
		"legacy":        {get: s.getLegacy, set: s.setLegacy},

		"defaultrouter":  {get: s.routerGetter("defaultrouter"), set: s.routerSetter("defaultrouter")},
		"defaultrouter6": {get: s.routerGetter("defaultrouter6"), set: s.routerSetter("defaultrouter6")},
		"vnet":           {get: s.getVnet, set: s.setVnet},

		"jail_zfs":         {get: s.getJailZfs, set: s.setJailZfs},
		"jail_zfs_dataset": {get: s.getJailZfsDataset, set: s.setJailZfsDataset},
		"login_flags":      {get: s.getLoginFlags, set: s.setLoginFlags},
		"cloned_release":   {get: s.getClonedRelease},
		"host_hostuuid":    {get: s.getHostHostuuid},
	}
}

var validNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func (s *Store) getID() (Value, error) {
	v, ok := s.data.Get("id")
	if !ok {
		return Value{}, &NotFoundError{Property: "id"}
	}
	return v, nil
}

// setID validates and stores the identity. id, name and uuid all alias this
// one key. Setting the current identity again is a no-op, so reading a config
// file for a jail that was initialized with its name does not trigger rename
// side effects.
func (s *Store) setID(v Value) error {
	if v.IsNull() {
		s.data.Set("id", Null())
		return nil
	}

	name := v.String()
	if s.CurrentID() == name {
		return nil
	}

	if !validNameRe.MatchString(name) {
		if _, err := uuid.Parse(name); err != nil {
			return &InvalidNameError{
				Name:   name,
				Reason: "allowed are alphanumerics, '.', '_', '-' or a UUID",
			}
		}
	}
	s.data.Set("id", String(name))
	return nil
}

// getType derives the jail type from the basejail and clonejail flags.
func (s *Store) getType() (Value, error) {
	if s.flag("basejail") {
		return String("basejail"), nil
	} else if s.flag("clonejail") {
		return String("clonejail"), nil
	}
	return String("jail"), nil
}

// setType translates the symbolic types into the two flags. The raw type key
// stays "jail"; only custom type strings are stored verbatim.
func (s *Store) setType(v Value) error {
	switch v.String() {
	case "basejail":
		s.data.Set("basejail", Bool(true))
		s.data.Set("clonejail", Bool(false))
		s.data.Set("type", String("jail"))
	case "clonejail":
		s.data.Set("basejail", Bool(false))
		s.data.Set("clonejail", Bool(true))
		s.data.Set("type", String("jail"))
	default:
		s.data.Set("type", v)
	}
	return nil
}

func (s *Store) flag(name string) bool {
	v, ok := s.data.Get(name)
	if !ok {
		return false
	}
	b, err := v.AsBool()
	return err == nil && b
}

func (s *Store) hasLegacyTag() bool { return s.data.Has("tag") }

// The single legacy tag and the tags list are mutually exclusive on disk.
// Reading tag without a legacy key synthesizes it from the first list entry.
func (s *Store) getTag() (Value, error) {
	if v, ok := s.data.Get("tag"); ok {
		return String(v.String()), nil
	}
	if v, ok := s.data.Get("tags"); ok {
		if items := v.AsList(); len(items) > 0 {
			return String(items[0]), nil
		}
	}
	return Null(), nil
}

func (s *Store) setTag(v Value) error {
	if s.hasLegacyTag() || !s.data.Has("tags") {
		// store as deprecated tag for downwards compatibility
		s.data.Set("tag", String(v.String()))
		return nil
	}

	tag := v.String()
	tags := make([]string, 0, 4)
	tags = append(tags, tag)
	if cur, ok := s.data.Get("tags"); ok {
		for _, item := range cur.AsList() {
			if item != tag {
				tags = append(tags, item)
			}
		}
	}
	s.data.Set("tags", String(strings.Join(tags, " ")))
	return nil
}

func (s *Store) getTags() (Value, error) {
	v, ok := s.data.Get("tags")
	if !ok {
		return Value{}, &NotFoundError{Property: "tags"}
	}
	return List(v.AsList()...), nil
}

// setTags stores the space-joined list and retires any legacy tag key.
func (s *Store) setTags(v Value) error {
	s.data.Set("tags", String(strings.Join(v.AsList(), " ")))
	if s.hasLegacyTag() {
		_ = s.data.Delete("tag")
	}
	return nil
}

func (s *Store) boolGetter(name string) getter {
	return func() (Value, error) {
		v, ok := s.data.Get(name)
		if !ok {
			return Value{}, &NotFoundError{Property: name}
		}
		b, err := v.AsBool()
		if err != nil {
			return Bool(false), nil
		}
		return Bool(b), nil
	}
}

func (s *Store) boolSetter(name string) setter {
	return func(v Value) error {
		if v.IsNull() {
			s.data.Set(name, Bool(false))
			return nil
		}
		b, err := v.AsBool()
		if err != nil {
			return &InvalidValueError{
				Property: name, Value: v.String(), Reason: err.Error(),
			}
		}
		s.data.Set(name, Bool(b))
		return nil
	}
}

// basejail_type defaults to nullfs for basejails when not explicitly set.
func (s *Store) getBasejailType() (Value, error) {
	if v, ok := s.data.Get("basejail_type"); ok {
		return String(v.String()), nil
	}
	if s.flag("basejail") {
		return String("nullfs"), nil
	}
	return Null(), nil
}

func (s *Store) getPriority() (Value, error) {
	v, ok := s.data.Get("priority")
	if !ok {
		return Value{}, &NotFoundError{Property: "priority"}
	}
	i, err := v.AsInt()
	if err != nil {
		return Value{}, &InvalidValueError{
			Property: "priority", Value: v.String(), Reason: err.Error(),
		}
	}
	return Int(i), nil
}

// priority is stored as a string for compatibility with the legacy formats.
func (s *Store) setPriority(v Value) error {
	s.data.Set("priority", String(v.String()))
	return nil
}

func (s *Store) getLegacy() (Value, error) {
	v, ok := s.data.Get("legacy")
	if !ok {
		return Value{}, &NotFoundError{Property: "legacy"}
	}
	b, err := v.AsBool()
	if err != nil {
		return Bool(false), nil
	}
	return Bool(b), nil
}

func (s *Store) setLegacy(v Value) error {
	b, err := v.AsBool()
	if err != nil {
		b = false
	}
	s.data.Set("legacy", Bool(b))
	return nil
}

func (s *Store) routerGetter(name string) getter {
	return func() (Value, error) {
		v, ok := s.data.Get(name)
		if !ok {
			return Value{}, &NotFoundError{Property: name}
		}
		if v.IsNull() || v.String() == "none" {
			return Null(), nil
		}
		return String(v.String()), nil
	}
}

func (s *Store) routerSetter(name string) setter {
	return func(v Value) error {
		if v.IsNull() {
			s.data.Set(name, String("none"))
		} else {
			s.data.Set(name, String(v.String()))
		}
		return nil
	}
}

func (s *Store) getVnet() (Value, error) {
	v, ok := s.data.Get("vnet")
	if !ok {
		return Value{}, &NotFoundError{Property: "vnet"}
	}
	b, err := v.AsBool()
	if err != nil {
		return Bool(false), nil
	}
	return Bool(b), nil
}

// vnet is stored with the on/off encoding the jail(8) tooling expects.
func (s *Store) setVnet(v Value) error {
	b, err := v.AsBool()
	if err != nil {
		return &InvalidValueError{
			Property: "vnet", Value: v.String(), Reason: err.Error(),
		}
	}
	if b {
		s.data.Set("vnet", String("on"))
	} else {
		s.data.Set("vnet", String("off"))
	}
	return nil
}

func (s *Store) getJailZfs() (Value, error) {
	v, ok := s.data.Get("jail_zfs")
	if !ok {
		return Value{}, &NotFoundError{Property: "jail_zfs"}
	}
	b, err := v.AsBool()
	if err != nil {
		return v, nil
	}
	return Bool(b), nil
}

// jail_zfs is tri-state: on, off or unset.
func (s *Store) setJailZfs(v Value) error {
	if v.IsNull() {
		if s.data.Has("jail_zfs") {
			return s.data.Delete("jail_zfs")
		}
		return nil
	}
	b, err := v.AsBool()
	if err != nil {
		return &InvalidValueError{
			Property: "jail_zfs", Value: v.String(), Reason: err.Error(),
		}
	}
	if b {
		s.data.Set("jail_zfs", String("on"))
	} else {
		s.data.Set("jail_zfs", String("off"))
	}
	return nil
}

func (s *Store) getJailZfsDataset() (Value, error) {
	v, ok := s.data.Get("jail_zfs_dataset")
	if !ok {
		return List(), nil
	}
	return List(v.AsList()...), nil
}

func (s *Store) setJailZfsDataset(v Value) error {
	s.data.Set("jail_zfs_dataset", String(strings.Join(v.AsList(), " ")))
	return nil
}

func (s *Store) getLoginFlags() (Value, error) {
	v, ok := s.data.Get("login_flags")
	if !ok {
		return List("-f", "root"), nil
	}
	return List(v.AsList()...), nil
}

func (s *Store) setLoginFlags(v Value) error {
	switch v.Kind() {
	case KindNull:
		if s.data.Has("login_flags") {
			return s.data.Delete("login_flags")
		}
		return nil
	case KindList, KindString:
		s.data.Set("login_flags", String(strings.Join(v.AsList(), " ")))
		return nil
	}
	return &InvalidValueError{
		Property: "login_flags", Value: v.String(),
		Reason: "expected a string or a list of strings",
	}
}

// cloned_release falls back to the release property for configs predating the
// split.
func (s *Store) getClonedRelease() (Value, error) {
	if v, ok := s.data.Get("cloned_release"); ok {
		return String(v.String()), nil
	}
	if v, ok := s.data.Get("release"); ok && !v.IsNull() {
		return String(v.String()), nil
	}
	return Null(), nil
}

func (s *Store) getHostHostuuid() (Value, error) {
	if v, ok := s.data.Get("host_hostuuid"); ok {
		return v, nil
	}
	return s.getID()
}
