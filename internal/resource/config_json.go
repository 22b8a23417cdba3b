package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bsdkit/jailconf/internal/props"
)

// configJSON stores the configuration as a JSON object in a file below the
// resource mountpoint, the current on-disk format.
type configJSON struct {
	resource *Resource
	file     string
}

var _ configHandler = (*configJSON)(nil)

func (c *configJSON) path(ctx context.Context) (string, error) {
	return c.resource.Abspath(ctx, c.file)
}

func (c *configJSON) Exists(ctx context.Context) bool {
	path, err := c.path(ctx)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (c *configJSON) Read(ctx context.Context) (map[string]any, error) {
	path, err := c.path(ctx)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	data := make(map[string]any)
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("unmarshal config %q: %w", path, err)
	}
	return data, nil
}

func (c *configJSON) Write(ctx context.Context, data map[string]props.Value,
) error {
	path, err := c.path(ctx)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	b = append(b, '\n')

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}
