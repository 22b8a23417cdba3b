package props

// NewDefaults returns the baked-in default table shared by every jail. The
// map is fresh on every call, so stores can never alias each other's
// defaults.
func NewDefaults() map[string]Value {
	return map[string]Value{
		"id":             Null(),
		"release":        Null(),
		"boot":           Bool(false),
		"priority":       Int(0),
		"legacy":         Bool(false),
		"basejail":       Bool(false),
		"clonejail":      Bool(false),
		"defaultrouter":  Null(),
		"defaultrouter6": Null(),
		"mac_prefix":     String("02ff60"),
		"vnet":           Bool(false),
		"interfaces":     List(),
		"ip4":            String("new"),
		"ip4_saddrsel":   Int(1),
		"ip4_addr":       Null(),
		"ip6":            String("new"),
		"ip6_saddrsel":   Int(1),
		"ip6_addr":       Null(),
		"resolver":       String("/etc/resolv.conf"),

		"host_domainname": String("none"),
		"devfs_ruleset":   Int(4),
		"enforce_statfs":  Int(2),
		"children_max":    Int(0),

		"allow_set_hostname": Int(1),
		"allow_sysvipc":      Int(0),
		"allow_raw_sockets":  Int(0),
		"allow_chflags":      Int(0),
		"allow_mount":        Int(0),
		"allow_mount_devfs":  Int(0),
		"allow_mount_nullfs": Int(0),
		"allow_mount_procfs": Int(0),
		"allow_mount_zfs":    Int(0),
		"allow_mount_tmpfs":  Int(0),
		"allow_quotas":       Int(0),
		"allow_socket_af":    Int(0),

		"sysvmsg": String("new"),
		"sysvsem": String("new"),
		"sysvshm": String("new"),

		"exec_clean":     Int(1),
		"exec_fib":       Int(1),
		"exec_prestart":  String("/usr/bin/true"),
		"exec_start":     String("/bin/sh /etc/rc"),
		"exec_poststart": String("/usr/bin/true"),
		"exec_prestop":   String("/usr/bin/true"),
		"exec_stop":      String("/bin/sh /etc/rc.shutdown"),
		"exec_poststop":  String("/usr/bin/true"),
		"exec_timeout":   String("60"),
		"stop_timeout":   String("30"),

		"mount_procfs":  String("0"),
		"mount_devfs":   String("1"),
		"mount_fdescfs": String("1"),
		"securelevel":   String("2"),

		"tags":     List(),
		"template": Bool(false),
		"jail_zfs": Bool(false),
	}
}

// DefaultsStore wraps a Store with the baked-in default table. Reads resolve
// through the merged view; writes land in the user layer and are tracked, so
// only explicitly set keys are ever persisted.
type DefaultsStore struct {
	*Store
	data *defaultsData
}

func NewDefaultsStore() *DefaultsStore {
	data := newDefaultsData(NewDefaults())
	return &DefaultsStore{Store: newStore(data), data: data}
}

// Default returns the registered default for name.
func (d *DefaultsStore) Default(name string) (Value, bool) {
	v, ok := d.data.defaults[name]
	return v, ok
}

// ExclusiveUserData is the persisted projection: only keys a user explicitly
// set, never the default-merged view.
func (d *DefaultsStore) ExclusiveUserData() map[string]Value {
	return d.UserData()
}
