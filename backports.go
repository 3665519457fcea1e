package qtcompat

import "fmt"

// Exec runs a modal object's event loop. Modern bindings dropped the
// trailing underscore once the plain name stopped colliding with a reserved
// word; legacy bindings keep it. The modern name is checked first.
func Exec(obj any) error {
	switch o := obj.(type) {
	case interface{ Exec() }:
		o.Exec()
		return nil
	case interface{ Exec_() }:
		o.Exec_()
		return nil
	}
	return fmt.Errorf("%T has neither an Exec nor an Exec_ method", obj)
}

// DevicePixelRatio returns obj's device pixel ratio with graceful fallback
// for older toolkits: the precise accessor first, then the integer one, then
// 1. A zero report is treated as 1.
func DevicePixelRatio(obj any) float64 {
	if o, ok := obj.(interface{ DevicePixelRatioF() float64 }); ok {
		if r := o.DevicePixelRatioF(); r != 0 {
			return r
		}
		return 1
	}
	if o, ok := obj.(interface{ DevicePixelRatio() int }); ok {
		// Reports 0 in rare cases.
		if r := o.DevicePixelRatio(); r != 0 {
			return float64(r)
		}
	}
	return 1
}

// SetDevicePixelRatio sets obj's device pixel ratio where the toolkit
// supports it and is a no-op elsewhere.
func SetDevicePixelRatio(obj any, ratio float64) {
	if o, ok := obj.(interface{ SetDevicePixelRatio(float64) }); ok {
		o.SetDevicePixelRatio(ratio)
	}
}
