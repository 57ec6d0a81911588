package exec

import (
	"maps"
	"time"
)

// config separates global settings (set at creation time) from local
// settings (set per run, cleared after each Run).
type config struct {
	globalEnv           map[string]string
	globalDir           string
	globalInheritEnv    bool
	globalDisableColors bool
	globalTimeout       time.Duration

	localEnv           map[string]string
	localDir           string
	localInheritEnv    *bool
	localDisableColors *bool
	localTimeout       *time.Duration
}

func newConfig() *config {
	return &config{
		globalEnv: make(map[string]string),
		localEnv:  make(map[string]string),
	}
}

// clone creates a deep copy of the configuration.
func (c *config) clone() *config {
	clone := *c
	clone.globalEnv = maps.Clone(c.globalEnv)
	clone.localEnv = maps.Clone(c.localEnv)
	if c.localInheritEnv != nil {
		v := *c.localInheritEnv
		clone.localInheritEnv = &v
	}
	if c.localDisableColors != nil {
		v := *c.localDisableColors
		clone.localDisableColors = &v
	}
	if c.localTimeout != nil {
		v := *c.localTimeout
		clone.localTimeout = &v
	}
	return &clone
}

// effectiveEnv merges global and local variables. Local settings win.
func (c *config) effectiveEnv() map[string]string {
	env := maps.Clone(c.globalEnv)
	maps.Copy(env, c.localEnv)

	if c.effectiveDisableColors() {
		env["NO_COLOR"] = "1"
		env["TERM"] = "dumb"
		env["CLICOLOR"] = "0"
		env["CLICOLOR_FORCE"] = "0"
		env["FORCE_COLOR"] = "0"
	}

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

func (c *config) effectiveDisableColors() bool {
	if c.localDisableColors != nil {
		return *c.localDisableColors
	}
	return c.globalDisableColors
}

func (c *config) effectiveTimeout() time.Duration {
	if c.localTimeout != nil {
		return *c.localTimeout
	}
	return c.globalTimeout
}

// resetLocal clears all local settings after a run.
func (c *config) resetLocal() {
	c.localEnv = make(map[string]string)
	c.localDir = ""
	c.localInheritEnv = nil
	c.localDisableColors = nil
	c.localTimeout = nil
}
