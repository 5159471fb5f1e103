//go:build !linux && !darwin

package platform

import "errors"

// NewDriver fails on platforms without a window system driver.
func NewDriver(opts Options) (Driver, error) {
	return nil, errors.New("no overlay driver available for this platform")
}
