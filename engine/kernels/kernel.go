// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"maps"
	"slices"

	"github.com/ik5/audalg/value"
)

// Kernel is the compute side of one engine object.
type Kernel interface {
	// Compute must validate every input before touching kernel state, so a
	// rejected call leaves the kernel as it was.
	Compute(in []value.Value) ([]value.Value, error)
	// Reset clears streaming state such as filter memory.
	Reset()
}

// Stateful is implemented by kernels that carry streaming state from one
// Compute to the next. Snapshot captures that state and returns a function
// that puts it back, for when the outputs of a Compute cannot be delivered.
type Stateful interface {
	Snapshot() (restore func())
}

// Factory builds a kernel from a resolved configuration. Parameter problems
// wrap abi.ErrInvalidParam; state larger than the budget wraps
// abi.ErrOutOfMemory.
type Factory func(p *Params) (Kernel, error)

var factories = map[string]Factory{
	// filters
	"HighPass":      newHighPass,
	"LowPass":       newLowPass,
	"BandPass":      newBandPass,
	"BandReject":    newBandReject,
	"DCRemoval":     newDCRemoval,
	"IIR":           newIIRKernel,
	"MovingAverage": newMovingAverage,
	"Envelope":      newEnvelope,

	// signal
	"Clipper":        newClipper,
	"Scale":          newScale,
	"UnaryOperator":  newUnaryOperator,
	"BinaryOperator": newBinaryOperator,
	"Derivative":     newDerivative,
	"Trimmer":        newTrimmer,
	"Resample":       newResample,
	"MonoMixer":      newMonoMixer,

	// framing and spectral
	"FrameCutter":     newFrameCutter,
	"Windowing":       newWindowing,
	"Spectrum":        newSpectrum,
	"PowerSpectrum":   newPowerSpectrum,
	"MelBands":        newMelBands,
	"MFCC":            newMFCC,
	"DCT":             newDCT,
	"AutoCorrelation": newAutoCorrelation,
	"LPC":             newLPC,

	// statistics and descriptors
	"Mean":             newMean,
	"Median":           newMedian,
	"Variance":         newVariance,
	"RMS":              newRMS,
	"Energy":           newEnergy,
	"InstantPower":     newInstantPower,
	"GeometricMean":    newGeometricMean,
	"PowerMean":        newPowerMean,
	"Crest":            newCrest,
	"Flatness":         newFlatness,
	"Entropy":          newEntropy,
	"Centroid":         newCentroid,
	"Decrease":         newDecrease,
	"MinMax":           newMinMax,
	"CentralMoments":   newCentralMoments,
	"ZeroCrossingRate": newZeroCrossingRate,
	"Leq":              newLeq,
	"Loudness":         newLoudness,
	"Larm":             newLarm,
	"HFC":              newHFC,
	"RollOff":          newRollOff,
	"MaxMagFreq":       newMaxMagFreq,
	"StrongPeak":       newStrongPeak,
	"Flux":             newFlux,

	"BPF":                   newBPF,
	"CrossSimilarityMatrix": newCrossSimilarityMatrix,
}

// Lookup returns the factory for name.
func Lookup(name string) (Factory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Names lists every algorithm with a kernel, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}
