// Package resource models the on-disk entities managed here: jails, releases
// and the host defaults. A resource is a ZFS dataset with a configuration
// attached in one of three formats: a JSON file, a legacy UCL file or legacy
// ZFS user properties on the dataset itself.
package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsdkit/jailconf/internal/props"
	"github.com/bsdkit/jailconf/internal/zfs"
)

type ConfigType string

const (
	ConfigTypeAuto ConfigType = "auto"
	ConfigTypeJSON ConfigType = "json"
	ConfigTypeUCL  ConfigType = "ucl"
	ConfigTypeZFS  ConfigType = "zfs"
)

const (
	defaultJSONFile = "config.json"
	defaultUCLFile  = "config"
)

// ErrIdentityUnresolved is returned by resources that were constructed with
// neither a dataset nor a dataset name.
var ErrIdentityUnresolved = errors.New(
	"resource has neither a dataset nor a dataset name")

type Option func(r *Resource)

// WithDataset binds the resource to an already resolved dataset.
func WithDataset(ds zfs.Dataset) Option {
	return func(r *Resource) { r.SetDataset(ds) }
}

// WithDatasetName binds the resource to a dataset by name; the dataset is
// resolved lazily.
func WithDatasetName(name string) Option {
	return func(r *Resource) { r.SetDatasetName(name) }
}

// WithConfigType pins the config format instead of auto-detection.
func WithConfigType(t ConfigType) Option {
	return func(r *Resource) { r.configType = t }
}

// WithConfigFile overrides the config file name of the file based formats.
func WithConfigFile(file string) Option {
	return func(r *Resource) { r.configFile = file }
}

func withConfigFileDefaults(jsonFile, uclFile string) Option {
	return func(r *Resource) {
		r.jsonFile = jsonFile
		r.uclFile = uclFile
	}
}

// Resource is a dataset-backed entity. Its identity is either an assigned
// dataset or a dataset name; assigning one invalidates the other.
type Resource struct {
	zfs zfs.ZFS

	dataset     zfs.Dataset
	datasetName string

	configType ConfigType
	configFile string
	jsonFile   string
	uclFile    string
}

func New(z zfs.ZFS, opts ...Option) *Resource {
	r := &Resource{
		zfs:        z,
		configType: ConfigTypeAuto,
		jsonFile:   defaultJSONFile,
		uclFile:    defaultUCLFile,
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// DatasetName returns the name of the backing dataset.
func (r *Resource) DatasetName() (string, error) {
	if r.datasetName != "" {
		return r.datasetName, nil
	}
	if r.dataset != nil {
		return r.dataset.Name(), nil
	}
	return "", ErrIdentityUnresolved
}

// SetDatasetName repoints the resource and drops any resolved dataset.
func (r *Resource) SetDatasetName(name string) {
	r.datasetName = name
	r.dataset = nil
}

// SetDataset binds a resolved dataset and drops the assigned name.
func (r *Resource) SetDataset(ds zfs.Dataset) {
	r.dataset = ds
	r.datasetName = ""
}

// Dataset resolves and caches the backing dataset.
func (r *Resource) Dataset(ctx context.Context) (zfs.Dataset, error) {
	if r.dataset != nil {
		return r.dataset, nil
	}
	name, err := r.DatasetName()
	if err != nil {
		return nil, err
	}
	ds, err := r.zfs.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	r.dataset = ds
	return ds, nil
}

// Mountpoint of the backing dataset.
func (r *Resource) Mountpoint(ctx context.Context) (string, error) {
	ds, err := r.Dataset(ctx)
	if err != nil {
		return "", err
	}
	return ds.Mountpoint(), nil
}

// Pool the resource lives on.
func (r *Resource) Pool() (zfs.Pool, error) {
	name, err := r.DatasetName()
	if err != nil {
		return zfs.Pool{}, err
	}
	return r.zfs.GetPool(name)
}

// Exists reports whether the backing dataset exists and is mounted somewhere.
func (r *Resource) Exists(ctx context.Context) bool {
	mountpoint, err := r.Mountpoint(ctx)
	if err != nil || mountpoint == "" {
		return false
	}
	info, err := os.Stat(mountpoint)
	return err == nil && info.IsDir()
}

// CreateResource creates the backing dataset and restricts its mountpoint to
// the owner.
func (r *Resource) CreateResource(ctx context.Context) error {
	name, err := r.DatasetName()
	if err != nil {
		return err
	}
	ds, err := r.zfs.CreateDataset(ctx, name)
	if err != nil {
		return err
	}
	r.SetDataset(ds)

	if mountpoint := ds.Mountpoint(); mountpoint != "" {
		if err := os.Chmod(mountpoint, 0o700); err != nil {
			return fmt.Errorf("chmod %q: %w", mountpoint, err)
		}
	}
	return nil
}

// ChildDataset resolves the child dataset name below the resource.
func (r *Resource) ChildDataset(ctx context.Context, name string,
) (zfs.Dataset, error) {
	parent, err := r.DatasetName()
	if err != nil {
		return nil, err
	}
	return r.zfs.GetDataset(ctx, parent+"/"+name)
}

// GetOrCreateChildDataset resolves the child dataset, creating it when
// missing.
func (r *Resource) GetOrCreateChildDataset(ctx context.Context, name string,
) (zfs.Dataset, error) {
	parent, err := r.DatasetName()
	if err != nil {
		return nil, err
	}
	return r.zfs.GetOrCreateDataset(ctx, parent+"/"+name)
}

// Abspath resolves a path relative to the resource mountpoint. Paths that
// resolve outside the mountpoint are rejected.
func (r *Resource) Abspath(ctx context.Context, relativePath string,
) (string, error) {
	mountpoint, err := r.Mountpoint(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(mountpoint, relativePath)
	if !strings.HasPrefix(path,
		filepath.Clean(mountpoint)+string(filepath.Separator),
	) {
		return "", fmt.Errorf("path %q escapes the resource at %q",
			relativePath, mountpoint)
	}
	return path, nil
}

// ConfigType resolves the config format. Auto-detection probes the formats in
// their historical order and settles on JSON for fresh resources; the result
// is cached.
func (r *Resource) ConfigType(ctx context.Context) (ConfigType, error) {
	if r.configType != ConfigTypeAuto {
		return r.configType, nil
	}
	for _, t := range []ConfigType{
		ConfigTypeJSON, ConfigTypeUCL, ConfigTypeZFS,
	} {
		h, err := r.handlerFor(t)
		if err != nil {
			return "", err
		}
		if h.Exists(ctx) {
			r.configType = t
			return t, nil
		}
	}
	r.configType = ConfigTypeJSON
	return r.configType, nil
}

// ConfigFileName returns the config file name relative to the resource
// mountpoint, or "" for the ZFS property format.
func (r *Resource) ConfigFileName(ctx context.Context) (string, error) {
	t, err := r.ConfigType(ctx)
	if err != nil {
		return "", err
	}
	if r.configFile != "" {
		return r.configFile, nil
	}
	switch t {
	case ConfigTypeJSON:
		return r.jsonFile, nil
	case ConfigTypeUCL:
		return r.uclFile, nil
	}
	return "", nil
}

type configHandler interface {
	Exists(ctx context.Context) bool
	Read(ctx context.Context) (map[string]any, error)
	Write(ctx context.Context, data map[string]props.Value) error
}

func (r *Resource) handlerFor(t ConfigType) (configHandler, error) {
	switch t {
	case ConfigTypeJSON:
		file := r.configFile
		if file == "" {
			file = r.jsonFile
		}
		return &configJSON{resource: r, file: file}, nil
	case ConfigTypeUCL:
		file := r.configFile
		if file == "" {
			file = r.uclFile
		}
		return &configUCL{resource: r, file: file}, nil
	case ConfigTypeZFS:
		return &configZFS{resource: r}, nil
	}
	return nil, fmt.Errorf("unknown config type %q", t)
}

func (r *Resource) handler(ctx context.Context) (configHandler, error) {
	t, err := r.ConfigType(ctx)
	if err != nil {
		return nil, err
	}
	return r.handlerFor(t)
}

// ReadConfig reads the raw configuration in the detected format.
func (r *Resource) ReadConfig(ctx context.Context) (map[string]any, error) {
	h, err := r.handler(ctx)
	if err != nil {
		return nil, err
	}
	return h.Read(ctx)
}

// WriteConfig persists the configuration in the detected format.
func (r *Resource) WriteConfig(ctx context.Context,
	data map[string]props.Value,
) error {
	h, err := r.handler(ctx)
	if err != nil {
		return err
	}
	return h.Write(ctx, data)
}

// HasConfig reports whether a configuration exists in the detected format.
func (r *Resource) HasConfig(ctx context.Context) bool {
	h, err := r.handler(ctx)
	if err != nil {
		return false
	}
	return h.Exists(ctx)
}
