package pipespec

import (
	"fmt"
	"strings"
)

const devSuffix = "-dev"

// ConfigurationError reports that none of the requested variants exist in
// the specification. The run cannot continue.
type ConfigurationError struct {
	Requested []string
	SpecPath  string
	Available []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no pipeline named %s in %s; available pipelines are: %s",
		strings.Join(e.Requested, ", "), e.SpecPath, strings.Join(e.Available, ", "))
}

// Resolve picks the variant to hand to the checker.
//
// With no requested names the spec default wins. Otherwise requested names
// are tried in order and the first one the spec provides is returned.
func Resolve(spec *Spec, requested []string) (string, error) {
	if len(requested) == 0 {
		return spec.Default, nil
	}

	seen := make(map[string]bool, len(requested))
	tried := make([]string, 0, len(requested))
	for _, name := range requested {
		if spec.StripsDevSuffix() {
			name = strings.TrimSuffix(name, devSuffix)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		tried = append(tried, name)

		if spec.Has(name) {
			return name, nil
		}
	}

	return "", &ConfigurationError{
		Requested: tried,
		SpecPath:  spec.Path,
		Available: append([]string(nil), spec.Available...),
	}
}
