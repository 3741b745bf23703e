package source

import "os"

// Environ is a Source backed by the process environment.
// Values are the raw variable strings; decoding is per setting.
type Environ struct {
	prefix string
}

// NewEnviron creates a process-environment source. The prefix, if any, is
// prepended to every looked-up key (e.g. prefix "MYAPP_" turns a lookup of
// "TIMEOUT" into os.LookupEnv("MYAPP_TIMEOUT")).
func NewEnviron(prefix string) *Environ {
	return &Environ{prefix: prefix}
}

// Lookup returns the raw environment variable value for key.
func (e *Environ) Lookup(key string) (any, bool) {
	v, ok := os.LookupEnv(e.prefix + key)
	if !ok {
		return nil, false
	}
	return v, true
}
