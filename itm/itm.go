package itm

import "math"

// link carries the parameters shared by every entry point.
type link struct {
	hTx, hRx float64
	climate  int
	n0       float64
	fMHz     float64
	pol      int
	epsilon  float64
	sigma    float64
	mdvar    int
}

// validate checks the shared parameters, returning the first failing
// status and any warnings raised.
func (l link) validate() (int, int64) {
	var warnings int64

	if l.hTx < 1 || l.hTx > 1000 {
		warnings |= WarnTxTerminalHeight
	}
	if l.hTx < 0.5 || l.hTx > 3000 || math.IsNaN(l.hTx) {
		return ErrorTxTerminalHeight, warnings
	}
	if l.hRx < 1 || l.hRx > 1000 {
		warnings |= WarnRxTerminalHeight
	}
	if l.hRx < 0.5 || l.hRx > 3000 || math.IsNaN(l.hRx) {
		return ErrorRxTerminalHeight, warnings
	}
	if l.climate < ClimateEquatorial || l.climate > ClimateMaritimeTemperateOverSea {
		return ErrorInvalidRadioClimate, warnings
	}
	if !(l.n0 >= 250 && l.n0 <= 400) {
		return ErrorRefractivity, warnings
	}
	if l.fMHz < 40 || l.fMHz > 10000 {
		warnings |= WarnFrequency
	}
	if !(l.fMHz >= 20 && l.fMHz <= 20000) {
		return ErrorFrequency, warnings
	}
	if l.pol != PolarizationHorizontal && l.pol != PolarizationVertical {
		return ErrorPolarization, warnings
	}
	if !(l.epsilon >= 1) {
		return ErrorEpsilon, warnings
	}
	if !(l.sigma > 0) {
		return ErrorSigma, warnings
	}
	if !validMDVar(l.mdvar) {
		return ErrorMDVar, warnings
	}
	return Success, warnings
}

func validPercent(v float64) bool {
	return v > 0 && v < 100
}

func validateTLS(time, location, situation float64) int {
	switch {
	case !validPercent(time):
		return ErrorInvalidTime
	case !validPercent(location):
		return ErrorInvalidLocation
	case !validPercent(situation):
		return ErrorInvalidSituation
	}
	return Success
}

func validateCR(confidence, reliability float64) int {
	switch {
	case !validPercent(confidence):
		return ErrorInvalidConfidence
	case !validPercent(reliability):
		return ErrorInvalidReliability
	}
	return Success
}

// FreeSpaceLoss returns the free space basic transmission loss in dB.
func FreeSpaceLoss(dMeter, fMHz float64) float64 {
	return 32.45 + 20*math.Log10(fMHz) + 20*math.Log10(dMeter/1000)
}

// P2PTLS predicts point-to-point attenuation at the given time, location
// and situation percentages.
func P2PTLS(hTx, hRx float64, pfl []float64, climate int, n0, fMHz float64, pol int,
	epsilon, sigma float64, mdvar int, time, location, situation float64,
	aDB *float64, warnings *int64) int {
	var iv IntermediateValues
	return P2PTLSEx(hTx, hRx, pfl, climate, n0, fMHz, pol, epsilon, sigma, mdvar,
		time, location, situation, aDB, warnings, &iv)
}

// P2PTLSEx is P2PTLS that also reports intermediate values.
func P2PTLSEx(hTx, hRx float64, pfl []float64, climate int, n0, fMHz float64, pol int,
	epsilon, sigma float64, mdvar int, time, location, situation float64,
	aDB *float64, warnings *int64, iv *IntermediateValues) int {
	l := link{hTx, hRx, climate, n0, fMHz, pol, epsilon, sigma, mdvar}
	status, w := l.validate()
	*warnings = w
	if status != Success {
		return status
	}
	if status := validateTLS(time, location, situation); status != Success {
		return status
	}
	return pointToPoint(l, pfl, icdf(time/100), icdf(location/100), icdf(situation/100),
		aDB, warnings, iv)
}

// P2PCR predicts point-to-point attenuation at the given confidence and
// reliability percentages.
func P2PCR(hTx, hRx float64, pfl []float64, climate int, n0, fMHz float64, pol int,
	epsilon, sigma float64, mdvar int, confidence, reliability float64,
	aDB *float64, warnings *int64) int {
	var iv IntermediateValues
	return P2PCREx(hTx, hRx, pfl, climate, n0, fMHz, pol, epsilon, sigma, mdvar,
		confidence, reliability, aDB, warnings, &iv)
}

// P2PCREx is P2PCR that also reports intermediate values.
func P2PCREx(hTx, hRx float64, pfl []float64, climate int, n0, fMHz float64, pol int,
	epsilon, sigma float64, mdvar int, confidence, reliability float64,
	aDB *float64, warnings *int64, iv *IntermediateValues) int {
	l := link{hTx, hRx, climate, n0, fMHz, pol, epsilon, sigma, mdvar}
	status, w := l.validate()
	*warnings = w
	if status != Success {
		return status
	}
	if status := validateCR(confidence, reliability); status != Success {
		return status
	}
	zt, zl, zc := crDeviates(confidence, reliability)
	return pointToPoint(l, pfl, zt, zl, zc, aDB, warnings, iv)
}

// AreaTLS predicts area-mode attenuation at the given time, location and
// situation percentages.
func AreaTLS(hTx, hRx float64, txSiting, rxSiting int, dKm, deltaH float64, climate int,
	n0, fMHz float64, pol int, epsilon, sigma float64, mdvar int,
	time, location, situation float64, aDB *float64, warnings *int64) int {
	var iv IntermediateValues
	return AreaTLSEx(hTx, hRx, txSiting, rxSiting, dKm, deltaH, climate, n0, fMHz, pol,
		epsilon, sigma, mdvar, time, location, situation, aDB, warnings, &iv)
}

// AreaTLSEx is AreaTLS that also reports intermediate values.
func AreaTLSEx(hTx, hRx float64, txSiting, rxSiting int, dKm, deltaH float64, climate int,
	n0, fMHz float64, pol int, epsilon, sigma float64, mdvar int,
	time, location, situation float64, aDB *float64, warnings *int64, iv *IntermediateValues) int {
	l := link{hTx, hRx, climate, n0, fMHz, pol, epsilon, sigma, mdvar}
	status, w := l.validate()
	*warnings = w
	if status != Success {
		return status
	}
	if status := validateArea(txSiting, rxSiting, dKm, deltaH); status != Success {
		return status
	}
	if status := validateTLS(time, location, situation); status != Success {
		return status
	}
	return area(l, [2]int{txSiting, rxSiting}, dKm, deltaH,
		icdf(time/100), icdf(location/100), icdf(situation/100), aDB, warnings, iv)
}

// AreaCR predicts area-mode attenuation at the given confidence and
// reliability percentages.
func AreaCR(hTx, hRx float64, txSiting, rxSiting int, dKm, deltaH float64, climate int,
	n0, fMHz float64, pol int, epsilon, sigma float64, mdvar int,
	confidence, reliability float64, aDB *float64, warnings *int64) int {
	var iv IntermediateValues
	return AreaCREx(hTx, hRx, txSiting, rxSiting, dKm, deltaH, climate, n0, fMHz, pol,
		epsilon, sigma, mdvar, confidence, reliability, aDB, warnings, &iv)
}

// AreaCREx is AreaCR that also reports intermediate values.
func AreaCREx(hTx, hRx float64, txSiting, rxSiting int, dKm, deltaH float64, climate int,
	n0, fMHz float64, pol int, epsilon, sigma float64, mdvar int,
	confidence, reliability float64, aDB *float64, warnings *int64, iv *IntermediateValues) int {
	l := link{hTx, hRx, climate, n0, fMHz, pol, epsilon, sigma, mdvar}
	status, w := l.validate()
	*warnings = w
	if status != Success {
		return status
	}
	if status := validateArea(txSiting, rxSiting, dKm, deltaH); status != Success {
		return status
	}
	if status := validateCR(confidence, reliability); status != Success {
		return status
	}
	zt, zl, zc := crDeviates(confidence, reliability)
	return area(l, [2]int{txSiting, rxSiting}, dKm, deltaH, zt, zl, zc, aDB, warnings, iv)
}

// crDeviates maps confidence and reliability onto the time and situation
// deviates with location held at its median.
func crDeviates(confidence, reliability float64) (zt, zl, zc float64) {
	return icdf(reliability / 100), icdf(0.5), icdf(confidence / 100)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateArea(txSiting, rxSiting int, dKm, deltaH float64) int {
	switch {
	case txSiting < SitingRandom || txSiting > SitingVeryCareful:
		return ErrorTxSitingCriteria
	case rxSiting < SitingRandom || rxSiting > SitingVeryCareful:
		return ErrorRxSitingCriteria
	case !(dKm > 0) || math.IsInf(dKm, 0):
		return ErrorPathDistance
	case !(deltaH >= 0) || math.IsInf(deltaH, 0):
		return ErrorDeltaH
	}
	return Success
}

func pointToPoint(l link, pfl []float64, zt, zl, zc float64,
	aDB *float64, warnings *int64, iv *IntermediateValues) int {
	if !validProfile(pfl) {
		return ErrorTerrainProfile
	}

	p := path{hg: [2]float64{l.hTx, l.hRx}, warnings: *warnings}
	p.initialize(l.fMHz, systemHeight(pfl), l.n0, l.pol, l.epsilon, l.sigma)
	if status := p.checkMedium(); status != Success {
		*warnings = p.warnings
		return status
	}
	p.quickProfile(pfl)
	p.longleyRice()
	return p.finish(l, zt, zl, zc, aDB, warnings, iv)
}

func area(l link, siting [2]int, dKm, deltaH, zt, zl, zc float64,
	aDB *float64, warnings *int64, iv *IntermediateValues) int {
	p := path{hg: [2]float64{l.hTx, l.hRx}, dh: deltaH, warnings: *warnings}
	p.initialize(l.fMHz, 0, l.n0, l.pol, l.epsilon, l.sigma)
	if status := p.checkMedium(); status != Success {
		*warnings = p.warnings
		return status
	}
	p.areaGeometry(siting)
	p.dist = dKm * 1000
	p.longleyRice()
	return p.finish(l, zt, zl, zc, aDB, warnings, iv)
}

func (p *path) finish(l link, zt, zl, zc float64,
	aDB *float64, warnings *int64, iv *IntermediateValues) int {
	fs := FreeSpaceLoss(p.dist, l.fMHz)
	a := fs + p.variability(l.climate, l.mdvar, zt, zl, zc)
	*warnings = p.warnings
	// Degenerate profile geometry drives the smooth earth diffraction
	// term out of its domain.
	if !finite(p.aref) || !finite(a) {
		return ErrorTerrainProfile
	}
	*aDB = a
	*iv = p.intermediate(fs)
	return statusOf(p.warnings)
}
