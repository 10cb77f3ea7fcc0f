// Package koanfp provides binding configuration from koanf.
// https://github.com/knadh/koanf
package koanfp

import (
	"github.com/knadh/koanf"
	"github.com/miruken-go/reflected/config"
)

// provider unmarshals the `path` tagged fields of the output.
type provider struct {
	k *koanf.Koanf
}

func (p *provider) Unmarshal(path string, flat bool, output any) error {
	if path != "" && !p.k.Exists(path) {
		return nil
	}
	return p.k.UnmarshalWithConf(path, output,
		koanf.UnmarshalConf{Tag: "path", FlatPaths: flat})
}

// P returns a config.Provider using the Koanf instance.
// Missing paths leave the output untouched.
func P(k *koanf.Koanf) config.Provider {
	if k == nil {
		panic("k cannot be nil")
	}
	return &provider{k}
}
