package flux

import (
	"strings"
)

// QualityFlags is the accumulated quality-control outcome of a flux
// computation. Bits are only ever added.
type QualityFlags uint32

const (
	Valid QualityFlags = 1 << iota
	SpikesDetected
	NonStationaryConditions
	WeakTurbulence
	AngleOfAttackExceeded
	// RainDetected is reserved for precipitation screening.
	RainDetected
	OutsideFluxFootprint

	None QualityFlags = 0
)

var flagNames = []struct {
	flag QualityFlags
	name string
}{
	{Valid, "Valid"},
	{SpikesDetected, "SpikesDetected"},
	{NonStationaryConditions, "NonStationaryConditions"},
	{WeakTurbulence, "WeakTurbulence"},
	{AngleOfAttackExceeded, "AngleOfAttackExceeded"},
	{RainDetected, "RainDetected"},
	{OutsideFluxFootprint, "OutsideFluxFootprint"},
}

// Has reports whether every bit of other is set.
func (f QualityFlags) Has(other QualityFlags) bool {
	return f&other == other
}

// Degraded reports whether any bit besides Valid is set.
func (f QualityFlags) Degraded() bool {
	return f&^Valid != 0
}

// Names lists the set flags in bit order.
func (f QualityFlags) Names() []string {
	names := []string{}
	for _, n := range flagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (f QualityFlags) String() string {
	if f == None {
		return "None"
	}
	return strings.Join(f.Names(), "|")
}
