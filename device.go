package vidgan

import (
	"fmt"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

// A DeviceError indicates that the requested compute
// device is not available.
type DeviceError struct {
	Device string
}

// Error returns the error message.
func (d *DeviceError) Error() string {
	return fmt.Sprintf("device unavailable: %s", d.Device)
}

// NewCreator returns the anyvec.Creator that every batch,
// label and network of a run is allocated with, so that
// they all live on the same device.
//
// Only the CPU backend is compiled in, so requesting a
// GPU always fails with a *DeviceError.
func NewCreator(useGPU bool) (anyvec.Creator, error) {
	if useGPU {
		return nil, &DeviceError{Device: "gpu:0"}
	}
	return anyvec32.DefaultCreator{}, nil
}
