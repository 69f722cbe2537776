package itm

import (
	"math"
	"math/cmplx"
)

const (
	geometryPointToPoint = -1
	geometryArea         = 1
)

// path is the working state of a single prediction.
type path struct {
	hg  [2]float64 // structural heights
	he  [2]float64 // effective heights
	dl  [2]float64 // horizon distances
	the [2]float64 // horizon angles

	dist float64 // path distance, meters
	dh   float64 // terrain irregularity
	wn   float64 // wave number
	ens  float64 // surface refractivity
	gme  float64 // effective earth curvature
	zgnd complex128

	aref     float64
	mode     int
	geometry int
	warnings int64
}

// initialize sets the frequency, refractivity and ground constants.
func (p *path) initialize(fMHz, hSys, n0 float64, pol int, epsilon, sigma float64) {
	p.wn = fMHz / 47.7
	p.ens = n0
	if hSys != 0 {
		p.ens *= math.Exp(-hSys / 9460)
	}
	p.gme = 157e-9 * (1 - 0.04665*math.Exp(p.ens/179.3))

	zq := complex(epsilon, 376.62*sigma/p.wn)
	p.zgnd = cmplx.Sqrt(zq - 1)
	if pol == PolarizationVertical {
		p.zgnd /= zq
	}
}

// checkMedium validates the derived surface refractivity, earth curvature
// and ground impedance.
func (p *path) checkMedium() int {
	switch {
	case p.ens < 150:
		return ErrorSurfaceRefractivitySmall
	case p.ens > 400:
		return ErrorSurfaceRefractivityLarge
	case p.ens < 250:
		p.warnings |= WarnSurfaceRefractivity
	}
	if p.gme < 75e-9 || p.gme > 250e-9 {
		return ErrorEffectiveEarth
	}
	if real(p.zgnd) <= math.Abs(imag(p.zgnd)) {
		return ErrorGroundImpedance
	}
	return Success
}

// quickProfile derives the point-to-point geometry from a terrain profile.
func (p *path) quickProfile(pfl []float64) {
	np := int(pfl[0])
	p.dist = pfl[0] * pfl[1]
	p.findHorizons(pfl)

	var xl [2]float64
	for j := range 2 {
		xl[j] = min(15*p.hg[j], 0.1*p.dl[j])
	}
	xl[1] = p.dist - xl[1]
	p.dh = terrainIrregularity(pfl, xl[0], xl[1])

	if p.dl[0]+p.dl[1] > 1.5*p.dist {
		// line of sight: effective heights from the fitted terrain line
		za, zb := fitLine(pfl, xl[0], xl[1])
		p.he[0] = p.hg[0] + dim(pfl[2], za)
		p.he[1] = p.hg[1] + dim(pfl[np+2], zb)
		for j := range 2 {
			p.dl[j] = p.smoothHorizon(j)
		}

		if q := p.dl[0] + p.dl[1]; q <= p.dist {
			scale := (p.dist / q) * (p.dist / q)
			for j := range 2 {
				p.he[j] *= scale
				p.dl[j] = p.smoothHorizon(j)
			}
		}

		for j := range 2 {
			q := math.Sqrt(2 * p.he[j] / p.gme)
			p.the[j] = (0.65*p.dh*(q/p.dl[j]-1) - 2*p.he[j]) / q
		}
	} else {
		za, _ := fitLine(pfl, xl[0], 0.9*p.dl[0])
		_, zb := fitLine(pfl, p.dist-0.9*p.dl[1], xl[1])
		p.he[0] = p.hg[0] + dim(pfl[2], za)
		p.he[1] = p.hg[1] + dim(pfl[np+2], zb)
	}

	p.geometry = geometryPointToPoint
}

// areaGeometry estimates effective heights, horizon distances and angles
// from siting criteria and terrain irregularity.
func (p *path) areaGeometry(siting [2]int) {
	for j := range 2 {
		if siting[j] == SitingRandom {
			p.he[j] = p.hg[j]
		} else {
			q := 4.0
			if siting[j] != SitingCareful {
				q = 9
			}
			if p.hg[j] < 5 {
				q *= math.Sin(0.3141593 * p.hg[j])
			}
			p.he[j] = p.hg[j] + (1+q)*math.Exp(-min(20, 2*p.hg[j]/max(1e-3, p.dh)))
		}

		q := math.Sqrt(2 * p.he[j] / p.gme)
		p.dl[j] = q * math.Exp(-0.07*math.Sqrt(p.dh/max(p.he[j], 5)))
		p.the[j] = (0.65*p.dh*(q/p.dl[j]-1) - 2*p.he[j]) / q
	}

	p.geometry = geometryArea
}

func (p *path) smoothHorizon(j int) float64 {
	return math.Sqrt(2*p.he[j]/p.gme) * math.Exp(-0.07*math.Sqrt(p.dh/max(p.he[j], 5)))
}

func (p *path) intermediate(fs float64) IntermediateValues {
	return IntermediateValues{
		ThetaHzn:    p.the,
		DHznMeter:   p.dl,
		HEMeter:     p.he,
		NS:          p.ens,
		DeltaHMeter: p.dh,
		ARefDB:      p.aref,
		AFsDB:       fs,
		DKm:         p.dist / 1000,
		Mode:        p.mode,
	}
}
