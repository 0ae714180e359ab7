//go:build !windows

package toolchain

import "context"

type unsupportedHost struct{}

// NewHost returns the host of the running OS. Only Windows hosts can
// enumerate Visual Studio installations.
func NewHost(vswhere string) Host {
	return unsupportedHost{}
}

func (unsupportedHost) Instances(context.Context) ([]Instance, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedHost) SDKs(context.Context) ([]SDKEntry, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedHost) OSVersion() string { return "" }
