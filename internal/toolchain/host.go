package toolchain

import (
	"context"
	"errors"
)

// ErrUnsupportedPlatform is returned by hosts that cannot enumerate Visual
// Studio installations.
var ErrUnsupportedPlatform = errors.New("Visual Studio toolset is not supported on current platform")

// InstanceState mirrors the state bits of a setup instance.
type InstanceState uint32

const (
	StateLocal InstanceState = 1 << iota
	StateRegistered

	StateComplete InstanceState = 0xFFFFFFFF
)

// Has reports whether every bit of want is set in s.
func (s InstanceState) Has(want InstanceState) bool {
	return s&want == want
}

// Package is a component installed in an instance.
type Package struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Instance is a compiler suite installation as reported by the host.
type Instance struct {
	State               InstanceState
	InstallationPath    string
	InstallationVersion string
	ProductID           string
	Packages            []Package
	// Catalog holds installer metadata such as productLineVersion and
	// productName.
	Catalog map[string]string
}

// SDKEntry is one raw platform SDK record. Key carries the "v" prefixed
// version, e.g. "v10.0". Missing values are left empty.
type SDKEntry struct {
	Key                string
	InstallationFolder string
	ProductVersion     string
}

// Host queries the machine for installed compilers and SDKs.
type Host interface {
	Instances(ctx context.Context) ([]Instance, error)
	SDKs(ctx context.Context) ([]SDKEntry, error)
	OSVersion() string
}
