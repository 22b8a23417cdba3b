package resource

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bsdkit/jailconf/internal/props"
)

// configUCL reads and writes the flat UCL files of historic installations:
// one "key = "value";" assignment per line. Nested UCL never occurred in
// these files, so no full parser is needed.
type configUCL struct {
	resource *Resource
	file     string
}

var _ configHandler = (*configUCL)(nil)

func (c *configUCL) path(ctx context.Context) (string, error) {
	return c.resource.Abspath(ctx, c.file)
}

func (c *configUCL) Exists(ctx context.Context) bool {
	path, err := c.path(ctx)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (c *configUCL) Read(ctx context.Context) (map[string]any, error) {
	path, err := c.path(ctx)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	data := make(map[string]any)
	for i, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") ||
			line == "{" || line == "}" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf(
				"malformed line %d in config %q: %q", i+1, path, line)
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), ";")
		value = strings.Trim(value, `"`)
		data[strings.TrimSpace(key)] = value
	}
	return data, nil
}

func (c *configUCL) Write(ctx context.Context, data map[string]props.Value,
) error {
	path, err := c.path(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s = %q;\n", key, data[key].String())
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}
