package resource

import (
	"context"
	"strings"

	"github.com/bsdkit/jailconf/internal/props"
)

// ZFSPropertyPrefix namespaces config keys stored as ZFS user properties, the
// oldest of the legacy formats.
const ZFSPropertyPrefix = "org.freebsd.iocage:"

type configZFS struct {
	resource *Resource
}

var _ configHandler = (*configZFS)(nil)

func (c *configZFS) Exists(ctx context.Context) bool {
	data, err := c.Read(ctx)
	return err == nil && len(data) > 0
}

func (c *configZFS) Read(ctx context.Context) (map[string]any, error) {
	ds, err := c.resource.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	properties, err := ds.Properties(ctx)
	if err != nil {
		return nil, err
	}

	data := make(map[string]any)
	for name, value := range properties {
		key, found := strings.CutPrefix(name, ZFSPropertyPrefix)
		if !found {
			continue
		}
		// "none" is the legacy encoding of an absent value
		if value == "none" {
			data[key] = nil
		} else {
			data[key] = value
		}
	}
	return data, nil
}

func (c *configZFS) Write(ctx context.Context, data map[string]props.Value,
) error {
	ds, err := c.resource.Dataset(ctx)
	if err != nil {
		return err
	}
	for key, value := range data {
		encoded := value.String()
		if value.IsNull() {
			encoded = "none"
		}
		err := ds.SetProperty(ctx, ZFSPropertyPrefix+key, encoded)
		if err != nil {
			return err
		}
	}
	return nil
}
