package loader

import (
	"fmt"

	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/config"
	"github.com/arloliu/pakref/internal/options"
	"go.uber.org/zap"
)

// DefaultConcurrency bounds the payload reads ResolveMany runs in parallel.
const DefaultConcurrency = 4

// Option is a functional option for configuring a Loader.
type Option = options.Option[*Loader]

// WithLogger sets the logger for trace and diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	})
}

// WithProfile applies a game/version profile: its name and version reach the
// decoders, and its partition capacities configure the cache.
func WithProfile(p *config.Profile) Option {
	return options.New(func(l *Loader) error {
		if p == nil {
			return fmt.Errorf("nil profile")
		}
		if err := p.Validate(); err != nil {
			return err
		}
		cacheOpts, err := p.CacheOptions()
		if err != nil {
			return err
		}
		l.profile, l.version = p.Name, p.Version
		l.cacheOpts = append(l.cacheOpts, cacheOpts...)

		return nil
	})
}

// WithVersion sets the profile version decoders dispatch on.
func WithVersion(version int) Option {
	return options.New(func(l *Loader) error {
		if version < 0 {
			return fmt.Errorf("version must not be negative: %d", version)
		}
		l.version = version

		return nil
	})
}

// WithCacheOptions passes options to the Loader's cache.Store.
func WithCacheOptions(opts ...cache.Option) Option {
	return options.NoError(func(l *Loader) {
		l.cacheOpts = append(l.cacheOpts, opts...)
	})
}

// WithConcurrency bounds the parallel payload reads of ResolveMany.
func WithConcurrency(n int) Option {
	return options.New(func(l *Loader) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive: %d", n)
		}
		l.concurrency = n

		return nil
	})
}
