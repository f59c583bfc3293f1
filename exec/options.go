package exec

import (
	"maps"
	"slices"
	"time"
)

// config separates global settings (from New) and local settings (from the
// With* methods). Local settings win and are cleared after every run.
type config struct {
	globalEnv         map[string]string
	globalDir         string
	globalInheritEnv  bool
	globalPassthrough bool
	globalTimeout     time.Duration

	localEnv          map[string]string
	localDir          string
	localInheritEnv   *bool
	localPassthrough  *bool
	localTimeout      *time.Duration
	localAllowedCodes []int
}

func newConfig() *config {
	return &config{
		globalEnv: make(map[string]string),
		localEnv:  make(map[string]string),
	}
}

func (c *config) clone() *config {
	cp := &config{
		globalEnv:         maps.Clone(c.globalEnv),
		globalDir:         c.globalDir,
		globalInheritEnv:  c.globalInheritEnv,
		globalPassthrough: c.globalPassthrough,
		globalTimeout:     c.globalTimeout,
		localEnv:          maps.Clone(c.localEnv),
		localDir:          c.localDir,
		localAllowedCodes: slices.Clone(c.localAllowedCodes),
	}
	if c.localInheritEnv != nil {
		v := *c.localInheritEnv
		cp.localInheritEnv = &v
	}
	if c.localPassthrough != nil {
		v := *c.localPassthrough
		cp.localPassthrough = &v
	}
	if c.localTimeout != nil {
		v := *c.localTimeout
		cp.localTimeout = &v
	}
	return cp
}

// effectiveEnv merges global and local variables; local wins.
func (c *config) effectiveEnv() map[string]string {
	env := maps.Clone(c.globalEnv)
	maps.Copy(env, c.localEnv)
	return env
}

func (c *config) effectiveDir() string {
	if c.localDir != "" {
		return c.localDir
	}
	return c.globalDir
}

func (c *config) effectiveInheritEnv() bool {
	if c.localInheritEnv != nil {
		return *c.localInheritEnv
	}
	return c.globalInheritEnv
}

func (c *config) effectivePassthrough() bool {
	if c.localPassthrough != nil {
		return *c.localPassthrough
	}
	return c.globalPassthrough
}

func (c *config) effectiveTimeout() time.Duration {
	if c.localTimeout != nil {
		return *c.localTimeout
	}
	return c.globalTimeout
}

// allowed reports whether a non-zero exit code was allow-listed for this run.
func (c *config) allowed(code int) bool {
	return slices.Contains(c.localAllowedCodes, code)
}

func (c *config) resetLocal() {
	c.localEnv = make(map[string]string)
	c.localDir = ""
	c.localInheritEnv = nil
	c.localPassthrough = nil
	c.localTimeout = nil
	c.localAllowedCodes = nil
}
