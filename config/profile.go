package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/arloliu/pakref/archive"
	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/compress"
	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/section"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultProfileName is the name of the profile returned by Default.
const DefaultProfileName = "default"

// Profile describes the conventions of one game/version's containers.
type Profile struct {
	// Name identifies the profile.
	Name string `yaml:"name"`

	// Version selects decoder variants registered for a version range.
	// Default: 0
	Version int `yaml:"version"`

	// Tag is the identifying tag every container starts with.
	// Default: PAKREF-CONTAINER
	Tag string `yaml:"tag"`

	// ByteOrder is "little", "big" or "native".
	// Default: little
	ByteOrder string `yaml:"byte_order"`

	// Compression is the algorithm of compressed entries: none, zlib, zstd, s2 or lz4.
	// Default: zlib
	Compression string `yaml:"compression"`

	// Transforms run after decompression, in order.
	// Default: none
	Transforms []string `yaml:"transforms"`

	// Partitions bounds cache partitions by name; zero or absent means unbounded.
	Partitions map[string]int `yaml:"partitions"`
}

// Default returns the stock profile: default tag, little-endian, zlib, no
// transforms and unbounded partitions.
func Default() *Profile {
	return &Profile{
		Name:        DefaultProfileName,
		Tag:         section.DefaultTag,
		ByteOrder:   endian.NameLittle,
		Compression: "zlib",
	}
}

// Load reads a single profile from a YAML file.
//
// Fields absent from the file keep their Default values. The profile is
// validated before it is returned.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a single profile from YAML.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks every field and reports all problems at once.
func (p *Profile) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.Version < 0 {
		errs = append(errs, fmt.Errorf("version must not be negative: %d", p.Version))
	}
	if p.Tag == "" {
		errs = append(errs, errors.New("tag is required"))
	}
	if _, err := endian.Parse(p.ByteOrder); err != nil {
		errs = append(errs, fmt.Errorf("byte_order: %w", err))
	}
	if _, err := format.ParseCompressionType(p.Compression); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if _, err := compress.ParsePipeline(p.Transforms); err != nil {
		errs = append(errs, fmt.Errorf("transforms: %w", err))
	}
	for name, n := range p.Partitions {
		if _, err := cache.ParsePartition(name); err != nil {
			errs = append(errs, fmt.Errorf("partitions: %w", err))
		}
		if n < 0 {
			errs = append(errs, fmt.Errorf("partitions.%s must not be negative: %d", name, n))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile %q: %w", p.Name, errors.Join(errs...))
	}

	return nil
}

// ArchiveOptions converts the profile into options for archive.Open and archive.NewBuilder.
//
// Parameters:
//   - logger: Logger passed to the archive, may be nil
//
// Returns:
//   - []archive.Option: Tag, byte order, compression, transforms and logger
//   - error: If the profile is invalid
func (p *Profile) ArchiveOptions(logger *zap.Logger) ([]archive.Option, error) {
	engine, err := endian.Parse(p.ByteOrder)
	if err != nil {
		return nil, err
	}
	comp, err := format.ParseCompressionType(p.Compression)
	if err != nil {
		return nil, err
	}
	pipeline, err := compress.ParsePipeline(p.Transforms)
	if err != nil {
		return nil, err
	}

	return []archive.Option{
		archive.WithTag(p.Tag),
		archive.WithByteOrder(engine),
		archive.WithCompression(comp),
		archive.WithTransforms(pipeline...),
		archive.WithLogger(logger),
	}, nil
}

// CacheOptions converts the partition capacities into cache.Store options.
func (p *Profile) CacheOptions() ([]cache.Option, error) {
	opts := make([]cache.Option, 0, len(p.Partitions))
	for name, n := range p.Partitions {
		part, err := cache.ParsePartition(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cache.WithCapacity(part, n))
	}

	return opts, nil
}
