package archive

import (
	"fmt"

	"github.com/arloliu/pakref/compress"
	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/options"
	"github.com/arloliu/pakref/section"
	"go.uber.org/zap"
)

// Config holds the container conventions shared by the reader and the Builder.
//
// Nothing in a container records its byte order, compression algorithm or
// transforms, so reader and writer must be configured identically, usually
// from the same config.Profile.
type Config struct {
	tag         string
	engine      endian.EndianEngine
	compression format.CompressionType
	codec       compress.Codec
	pipeline    compress.Pipeline
	logger      *zap.Logger
}

// NewConfig creates a Config with the stock conventions: the default tag,
// little-endian fields, zlib streams and no transforms.
func NewConfig() *Config {
	codec, _ := compress.GetCodec(format.CompressionZlib)

	return &Config{
		tag:         section.DefaultTag,
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionZlib,
		codec:       codec,
		logger:      zap.NewNop(),
	}
}

// Tag returns the expected identifying tag.
func (c *Config) Tag() string { return c.tag }

// ByteOrder returns the container byte order.
func (c *Config) ByteOrder() endian.EndianEngine { return c.engine }

// Compression returns the algorithm of compressed entries.
func (c *Config) Compression() format.CompressionType { return c.compression }

// Transforms returns the post-decompression transform pipeline.
func (c *Config) Transforms() compress.Pipeline { return c.pipeline }

func (c *Config) setTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("container tag must not be empty")
	}
	c.tag = tag

	return nil
}

func (c *Config) setCompression(comp format.CompressionType) error {
	codec, err := compress.GetCodec(comp)
	if err != nil {
		return err
	}
	c.compression = comp
	c.codec = codec

	return nil
}

// Option is a functional option for configuring the archive reader and Builder.
type Option = options.Option[*Config]

// WithTag sets the identifying tag the container header must match.
func WithTag(tag string) Option {
	return options.New(func(c *Config) error {
		return c.setTag(tag)
	})
}

// WithLittleEndian reads and writes little-endian fields. It is the default option.
func WithLittleEndian() Option {
	return WithByteOrder(endian.GetLittleEndianEngine())
}

// WithBigEndian reads and writes big-endian fields, as console builds do.
func WithBigEndian() Option {
	return WithByteOrder(endian.GetBigEndianEngine())
}

// WithByteOrder sets the byte order of the container fields and length prefixes.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("byte order must not be nil")
		}
		c.engine = engine

		return nil
	})
}

// WithCompression sets the algorithm used by entries flagged as compressed.
func WithCompression(comp format.CompressionType) Option {
	return options.New(func(c *Config) error {
		return c.setCompression(comp)
	})
}

// WithTransforms sets the stages applied after decompression, in read order.
func WithTransforms(transforms ...compress.Transform) Option {
	return options.NoError(func(c *Config) {
		c.pipeline = append(compress.Pipeline(nil), transforms...)
	})
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

func newConfig(opts []Option) (*Config, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
