package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks that the settings describe a runnable extraction.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Paths.Input == "" {
		fail("paths.input is empty")
	}
	if c.Paths.Output == "" {
		fail("paths.output is empty")
	}
	if !c.Extract.Maps && !c.Extract.DBC {
		fail("nothing to extract: enable extract.maps or extract.dbc")
	}

	m := c.Map
	if m.FlatHeightDelta < 0 || m.FlatLiquidDelta < 0 {
		fail("flat deltas must not be negative (height %g, liquid %g)", m.FlatHeightDelta, m.FlatLiquidDelta)
	}
	if m.Int8Limit <= 0 || m.Int16Limit <= m.Int8Limit {
		fail("packing limits must satisfy 0 < int8_limit < int16_limit (got %g, %g)", m.Int8Limit, m.Int16Limit)
	}
	if m.VersionMagic != "" && len(m.VersionMagic) != 4 {
		fail("map.version_magic %q must be exactly four bytes", m.VersionMagic)
	}
	for _, loc := range c.Client.Locales {
		if len(loc) != 4 {
			fail("client locale %q is not a four-letter locale code", loc)
		}
	}

	return errors.Join(errs...)
}
