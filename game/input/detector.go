package input

// Detector decides between mouse and touch from the first press it sees.
// Browsers and some desktops synthesize mouse events from touches; once a
// device is chosen the other one is ignored.
type Detector struct {
	mode Device
}

// Observe reports whether a press from dev should be accepted, fixing the
// mode if none is set yet.
func (d *Detector) Observe(dev Device) bool {
	if d.mode == DeviceUnknown {
		d.mode = dev
	}
	return d.mode == dev
}

// Allows reports whether non-press traffic from dev should be accepted. It
// never fixes the mode.
func (d *Detector) Allows(dev Device) bool {
	return d.mode == DeviceUnknown || d.mode == dev
}

// Mode returns the chosen device.
func (d *Detector) Mode() Device { return d.mode }

// Reset forgets the chosen device.
func (d *Detector) Reset() { d.mode = DeviceUnknown }
