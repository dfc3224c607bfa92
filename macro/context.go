package macro

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"strconv"

	"github.com/kallfass/mex"
)

// Scope is a lookup-only view of the syntactic scope enclosing a call site.
// Macro implementations may ask whether a name is bound around their call
// site; they can never modify the scope.
type Scope interface {
	Lookup(name string) (*mex.Node, bool)
}

// EmptyScope is a scope binding nothing, used for call sites at the top
// level of a compilation unit.
var EmptyScope Scope = emptyScope{}

type emptyScope struct{}

func (emptyScope) Lookup(string) (*mex.Node, bool) {
	return nil, false
}

// Config is a read-only capability for compile-time configuration values.
// The expansion driver creates it when a pass starts and revokes it when the
// pass ends, so neither later compilation phases nor the compiled artifact
// at runtime can read compile-time configuration.
type Config struct {
	values map[string]string
}

// NewConfig creates a configuration capability over a copy of the given
// key/value pairs.
func NewConfig(values map[string]string) *Config {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Config{values: copied}
}

// Get returns the configuration value for a key, if present. A revoked
// capability answers every query negatively.
func (c *Config) Get(key string) (string, bool) {
	if c == nil || c.values == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Bool interprets a configuration value as a boolean flag. Missing keys and
// unparsable values are false.
func (c *Config) Bool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Revoke drops the capability's view of the configuration. To be called by
// the expansion driver when the pass ends, never by macro implementations.
func (c *Config) Revoke() {
	if c != nil {
		c.values = nil
	}
}

// Context is the per-invocation, read-only environment handed to a macro
// implementation: the call site's source location, a lookup-only reference
// to the enclosing syntactic scope, and an accessor for compile-time
// configuration. A context is created per match and discarded after the
// implementation returns.
type Context struct {
	loc   mex.Location
	scope Scope
	cfg   *Config
}

// Location returns the source location of the call site being expanded.
// Macro-generated replacement nodes are stamped with this location by the
// driver.
func (ctx *Context) Location() mex.Location {
	return ctx.loc
}

// Scope returns the lookup-only enclosing syntactic scope.
func (ctx *Context) Scope() Scope {
	if ctx.scope == nil {
		return EmptyScope
	}
	return ctx.scope
}

// Config returns the compile-time configuration accessor. It is only usable
// during the expansion pass.
func (ctx *Context) Config() *Config {
	return ctx.cfg
}
