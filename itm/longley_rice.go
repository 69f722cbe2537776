package itm

import (
	"math"
	"math/cmplx"
)

// reference holds the coefficients of the piecewise reference attenuation
// curve for one path.
type reference struct {
	dls  [2]float64 // smooth earth horizon distances
	dlsa float64    // sum of smooth earth horizon distances
	dla  float64    // sum of horizon distances
	tha  float64    // total bending angle
	xae  float64

	ael, ak1, ak2 float64 // line of sight fit
	aed, emd      float64 // diffraction line
	aes, ems, dx  float64 // scatter line
}

// longleyRice computes the reference attenuation at p.dist and sets the
// propagation mode.
func (p *path) longleyRice() {
	var r reference
	for j := range 2 {
		r.dls[j] = math.Sqrt(2 * p.he[j] / p.gme)
	}
	r.dlsa = r.dls[0] + r.dls[1]
	r.dla = p.dl[0] + p.dl[1]
	r.tha = max(p.the[0]+p.the[1], -r.dla*p.gme)

	for j := range 2 {
		if math.Abs(p.the[j]) > 200e-3 {
			p.warnings |= WarnTxHorizonAngle << j
		}
		if p.dl[j] < 0.1*r.dls[j] {
			p.warnings |= WarnTxHorizonDistance1 << j
		}
		if p.dl[j] > 3*r.dls[j] {
			p.warnings |= WarnTxHorizonDistance2 << j
		}
	}

	dmin := math.Abs(p.he[0]-p.he[1]) / 200e-3

	df := p.newDiffraction(&r)
	r.xae = math.Cbrt(1 / (p.wn * p.gme * p.gme))
	d3 := max(r.dlsa, 1.3787*r.xae+r.dla)
	d4 := d3 + 2.7574*r.xae
	a3 := df.loss(d3, p, &r)
	a4 := df.loss(d4, p, &r)
	r.emd = (a4 - a3) / (d4 - d3)
	r.aed = a3 - r.emd*d3

	d := p.dist
	if d > 1000e3 {
		p.warnings |= WarnPathDistanceTooBig1
	}
	if d > 2000e3 {
		p.warnings |= WarnPathDistanceTooBig2
	}
	if d < dmin {
		p.warnings |= WarnPathDistanceTooSmall1
	}
	if d < 1e3 {
		p.warnings |= WarnPathDistanceTooSmall2
	}

	if d < r.dlsa {
		p.fitLineOfSight(&r)
		p.aref = r.ael + r.ak1*d + r.ak2*math.Log(d)
		p.mode = ModeLineOfSight
	} else {
		p.fitScatter(&r)
		if d > r.dx {
			p.aref = r.aes + r.ems*d
			p.mode = ModeTroposcatter
		} else {
			p.aref = r.aed + r.emd*d
			p.mode = ModeDiffraction
		}
	}
	p.aref = max(p.aref, 0)
}

// fitLineOfSight fits ael + ak1*d + ak2*ln(d) through the line of sight
// attenuation, joining the diffraction line at the smooth earth horizon.
func (p *path) fitLineOfSight(r *reference) {
	los := p.newLineOfSight(r)

	d2 := r.dlsa
	a2 := r.aed + d2*r.emd
	d0 := 1.908 * p.wn * p.he[0] * p.he[1]
	var d1 float64
	if r.aed >= 0 {
		d0 = min(d0, 0.5*r.dla)
		d1 = d0 + 0.25*(r.dla-d0)
	} else {
		d1 = max(-r.aed/r.emd, 0.25*r.dla)
	}
	a1 := los.loss(d1, p, r)

	fitted := false
	if d0 < d1 {
		a0 := los.loss(d0, p, r)
		q := math.Log(d2 / d0)
		r.ak2 = max(0, ((d2-d0)*(a1-a0)-(d1-d0)*(a2-a0))/((d2-d0)*math.Log(d1/d0)-(d1-d0)*q))
		fitted = r.aed >= 0 || r.ak2 > 0
		if fitted {
			r.ak1 = (a2 - a0 - r.ak2*q) / (d2 - d0)
			if r.ak1 < 0 {
				r.ak1 = 0
				r.ak2 = dim(a2, a0) / q
				if r.ak2 == 0 {
					r.ak1 = r.emd
				}
			}
		}
	}
	if !fitted {
		r.ak1 = dim(a2, a1) / (d2 - d1)
		r.ak2 = 0
		if r.ak1 == 0 {
			r.ak1 = r.emd
		}
	}
	r.ael = a2 - r.ak1*d2 - r.ak2*math.Log(d2)
}

// fitScatter computes the troposcatter line and the distance dx where it
// takes over from diffraction.
func (p *path) fitScatter(r *reference) {
	sc := p.newScatter()
	d5 := r.dla + 200e3
	d6 := d5 + 200e3
	a6 := sc.loss(d6, p, r)
	a5 := sc.loss(d5, p, r)
	if a5 < 1000 {
		r.ems = (a6 - a5) / 200e3
		r.dx = max(r.dlsa, max(r.dla+0.3*r.xae*math.Log(47.7*p.wn), (a5-r.aed-r.ems*d5)/(r.emd-r.ems)))
		r.aes = (r.emd-r.ems)*r.dx + r.aed
	} else {
		r.ems = r.emd
		r.aes = r.aed
		r.dx = 10e6
	}
}

type diffraction struct {
	wd1, xd1, afo, qk, aht, xht float64
}

func (p *path) newDiffraction(r *reference) diffraction {
	var df diffraction

	q := p.hg[0] * p.hg[1]
	qk := p.he[0]*p.he[1] - q
	if p.geometry == geometryPointToPoint {
		q += 10
	}
	df.wd1 = math.Sqrt(1 + qk/q)
	df.xd1 = r.dla + r.tha/p.gme

	q = (1 - 0.8*math.Exp(-r.dlsa/50e3)) * p.dh
	q *= 0.78 * math.Exp(-math.Pow(q/16, 0.25))
	df.afo = min(15, 2.171*math.Log(1+4.77e-4*p.hg[0]*p.hg[1]*p.wn*q))
	df.qk = 1 / cmplx.Abs(p.zgnd)
	df.aht = 20

	for j := range 2 {
		a := 0.5 * p.dl[j] * p.dl[j] / p.he[j]
		wa := math.Cbrt(a * p.wn)
		pk := df.qk / wa
		q := (1.607 - pk) * 151 * wa * p.dl[j] / a
		df.xht += q
		df.aht += fht(q, pk)
	}
	return df
}

// loss blends knife-edge and smooth earth diffraction at distance d.
func (df *diffraction) loss(d float64, p *path, r *reference) float64 {
	th := r.tha + d*p.gme
	ds := d - r.dla
	q := 0.0795775 * p.wn * ds * th * th
	knife := aknfe(q*p.dl[0]/(ds+p.dl[0])) + aknfe(q*p.dl[1]/(ds+p.dl[1]))

	a := ds / th
	wa := math.Cbrt(a * p.wn)
	pk := df.qk / wa
	q = (1.607-pk)*151*wa*th + df.xht
	smooth := 0.05751*q - 4.343*math.Log(q) - df.aht

	q = (df.wd1 + df.xd1/d) * min((1-0.8*math.Exp(-d/50e3))*p.dh*p.wn, 6283.2)
	wd := 25.1 / (25.1 + math.Sqrt(q))
	return smooth*wd + (1-wd)*knife + df.afo
}

type scatter struct {
	ad, rr, etq, h0s float64
}

func (p *path) newScatter() scatter {
	sc := scatter{
		ad: p.dl[0] - p.dl[1],
		rr: p.he[1] / p.he[0],
	}
	if sc.ad < 0 {
		sc.ad = -sc.ad
		sc.rr = 1 / sc.rr
	}
	sc.etq = (5.67e-6*p.ens-2.32e-3)*p.ens + 0.031
	sc.h0s = -15
	return sc
}

// loss returns the troposcatter attenuation at distance d, or 1001 when
// the scatter geometry is undefined. Successive calls reuse the previous
// frequency gain once it exceeds 15 dB.
func (sc *scatter) loss(d float64, p *path, r *reference) float64 {
	var h0 float64
	if sc.h0s > 15 {
		h0 = sc.h0s
	} else {
		th := p.the[0] + p.the[1] + d*p.gme
		r2 := 2 * p.wn * th
		r1 := r2 * p.he[0]
		r2 *= p.he[1]
		if r1 < 0.2 && r2 < 0.2 {
			return 1001
		}

		ss := (d - sc.ad) / (d + sc.ad)
		q := sc.rr / ss
		ss = max(0.1, ss)
		q = min(max(0.1, q), 10)
		z0 := (d - sc.ad) * (d + sc.ad) * th * 0.25 / d
		et := (sc.etq*math.Exp(-math.Pow(min(1.7, z0/8e3), 6)) + 1) * z0 / 1.7556e3
		ett := max(et, 1)

		h0 = (h0f(r1, ett) + h0f(r2, ett)) * 0.5
		h0 += min(h0, (1.38-math.Log(ett))*math.Log(ss)*math.Log(q)*0.49)
		h0 = dim(h0, 0)
		if et < 1 {
			g := (1 + 1.4142/r1) * (1 + 1.4142/r2)
			h0 = et*h0 + (1-et)*4.343*math.Log(g*g*(r1+r2)/(r1+r2+2.8284))
		}
		if h0 > 15 && sc.h0s >= 0 {
			h0 = sc.h0s
		}
	}
	sc.h0s = h0

	th := r.tha + d*p.gme
	return ahd(th*d) + 4.343*math.Log(47.7*p.wn*math.Pow(th, 4)) -
		0.1*(p.ens-301)*math.Exp(-th*d/40e3) + h0
}

type lineOfSight struct {
	wls float64
}

func (p *path) newLineOfSight(r *reference) lineOfSight {
	return lineOfSight{wls: 0.021 / (0.021 + p.wn*p.dh/max(10e3, r.dlsa))}
}

// loss returns the two-ray attenuation at distance d weighted against the
// extended diffraction line.
func (los lineOfSight) loss(d float64, p *path, r *reference) float64 {
	q := (1 - 0.8*math.Exp(-d/50e3)) * p.dh
	s := 0.78 * q * math.Exp(-math.Pow(q/16, 0.25))
	q = p.he[0] + p.he[1]
	sps := q / math.Sqrt(d*d+q*q)

	rc := (complex(sps, 0) - p.zgnd) / (complex(sps, 0) + p.zgnd) *
		complex(math.Exp(-min(10, p.wn*s*sps)), 0)
	q = abs2(rc)
	if q < 0.25 || q < sps {
		rc *= complex(math.Sqrt(sps/q), 0)
	}

	extended := r.emd*d + r.aed
	q = p.wn * p.he[0] * p.he[1] * 2 / d
	if q > 1.57 {
		q = 3.14 - 2.4649/q
	}
	twoRay := -4.343 * math.Log(abs2(complex(math.Cos(q), -math.Sin(q))+rc))
	return (twoRay-extended)*los.wls + extended
}

// aknfe is the knife-edge diffraction attenuation for v squared.
func aknfe(v2 float64) float64 {
	if v2 < 5.76 {
		return 6.02 + 9.11*math.Sqrt(v2) - 1.27*v2
	}
	return 12.953 + 4.343*math.Log(v2)
}

// fht is the smooth earth height gain function.
func fht(x, pk float64) float64 {
	if x < 200 {
		w := -math.Log(pk)
		if pk < 1e-5 || x*w*w*w > 5495 {
			v := -117.0
			if x > 1 {
				v += 17.372 * math.Log(x)
			}
			return v
		}
		return 2.5e-5*x*x/pk - 8.686*w - 15
	}

	v := 0.05751*x - 4.343*math.Log(x)
	if x < 2000 {
		w := 0.0134 * x * math.Exp(-0.005*x)
		v = (1-w)*v + w*(17.372*math.Log(x)-117)
	}
	return v
}

var (
	h0a = [5]float64{25, 80, 177, 395, 705}
	h0b = [5]float64{24, 45, 68, 80, 105}
)

// h0f is the troposcatter frequency gain.
func h0f(r, et float64) float64 {
	it := int(et)
	var q float64
	switch {
	case it <= 0:
		it = 1
	case it >= 5:
		it = 5
	default:
		q = et - float64(it)
	}

	x := 1 / (r * r)
	v := 4.343 * math.Log((h0a[it-1]*x+h0b[it-1])*x+1)
	if q != 0 {
		v = (1-q)*v + q*4.343*math.Log((h0a[it]*x+h0b[it])*x+1)
	}
	return v
}

// ahd is the scatter attenuation function of th*d.
func ahd(td float64) float64 {
	var a, b, c float64
	switch {
	case td <= 10e3:
		a, b, c = 133.4, 0.332e-3, -4.343
	case td <= 70e3:
		a, b, c = 104.6, 0.212e-3, -1.086
	default:
		a, b, c = 71.8, 0.157e-3, 2.171
	}
	return a + b*td + c*math.Log(td)
}

func abs2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
