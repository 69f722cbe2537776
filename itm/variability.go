package itm

import "math"

// climateCurves holds the empirical variability curve coefficients of one
// radio climate.
type climateCurves struct {
	bv1, bv2, xv1, xv2, xv3      float64 // median adjustment
	bsm1, bsm2, xsm1, xsm2, xsm3 float64 // time variability, below median
	bsp1, bsp2, xsp1, xsp2, xsp3 float64 // time variability, above median
	bsd1, bzd1                   float64
	bfm1, bfm2, bfm3             float64 // frequency gain, below median
	bfp1, bfp2, bfp3             float64 // frequency gain, above median
}

var climates = [7]climateCurves{
	ClimateEquatorial - 1: {
		-9.67, 12.7, 144.9e3, 190.3e3, 133.8e3,
		2.13, 159.5, 762.2e3, 123.6e3, 94.5e3,
		2.11, 102.3, 636.9e3, 134.8e3, 95.6e3,
		1.224, 1.282,
		1.0, 0.0, 0.0,
		1.0, 0.0, 0.0,
	},
	ClimateContinentalSubtropical - 1: {
		-0.62, 9.19, 228.9e3, 205.2e3, 143.6e3,
		2.66, 7.67, 100.4e3, 172.5e3, 136.4e3,
		6.87, 15.53, 138.7e3, 143.7e3, 98.6e3,
		0.801, 2.161,
		1.0, 0.0, 0.0,
		0.93, 0.31, 2.00,
	},
	ClimateMaritimeSubtropical - 1: {
		1.26, 15.5, 262.6e3, 185.2e3, 99.8e3,
		6.11, 6.65, 138.2e3, 242.2e3, 178.6e3,
		10.08, 9.60, 165.3e3, 225.7e3, 129.7e3,
		1.380, 1.282,
		1.0, 0.0, 0.0,
		1.0, 0.0, 0.0,
	},
	ClimateDesert - 1: {
		-9.21, 9.05, 84.1e3, 101.1e3, 98.6e3,
		1.98, 13.11, 139.1e3, 132.7e3, 193.5e3,
		3.68, 159.3, 464.4e3, 93.1e3, 94.2e3,
		1.000, 20.0,
		1.0, 0.0, 0.0,
		0.93, 0.19, 1.79,
	},
	ClimateContinentalTemperate - 1: {
		-0.62, 9.19, 228.9e3, 205.2e3, 143.6e3,
		2.68, 7.16, 93.7e3, 186.8e3, 133.5e3,
		4.75, 8.12, 93.2e3, 135.9e3, 113.4e3,
		1.224, 1.282,
		0.92, 0.25, 1.77,
		0.93, 0.31, 2.00,
	},
	ClimateMaritimeTemperateOverLand - 1: {
		-0.39, 2.86, 141.7e3, 315.9e3, 167.4e3,
		6.86, 10.38, 187.8e3, 169.6e3, 108.9e3,
		8.58, 13.97, 216.0e3, 152.0e3, 122.7e3,
		1.518, 1.282,
		1.0, 0.0, 0.0,
		1.0, 0.0, 0.0,
	},
	ClimateMaritimeTemperateOverSea - 1: {
		3.15, 857.9, 2222.0e3, 164.8e3, 116.3e3,
		8.51, 169.8, 609.8e3, 119.9e3, 106.6e3,
		8.43, 8.19, 136.2e3, 188.5e3, 122.9e3,
		1.518, 1.282,
		1.0, 0.0, 0.0,
		1.0, 0.0, 0.0,
	},
}

// variability returns the attenuation relative to free space at the
// requested quantiles. zt, zl and zc are standard normal deviates for time,
// location and situation.
func (p *path) variability(climate, mdvar int, zt, zl, zc float64) float64 {
	c := climates[climate-1]

	kdv := mdvar
	noSituation := kdv >= MDVarEliminateSituation
	if noSituation {
		kdv -= MDVarEliminateSituation
	}
	noLocation := kdv >= MDVarEliminateLocation
	if noLocation {
		kdv -= MDVarEliminateLocation
	}

	q := math.Log(0.133 * p.wn)
	gm := c.bfm1 + c.bfm2/(math.Pow(c.bfm3*q, 2)+1)
	gp := c.bfp1 + c.bfp2/(math.Pow(c.bfp3*q, 2)+1)

	dexa := math.Sqrt(18e6*p.he[0]) + math.Sqrt(18e6*p.he[1]) + math.Cbrt(575.7e12/p.wn)
	var de float64
	if p.dist < dexa {
		de = 130e3 * p.dist / dexa
	} else {
		de = 130e3 + p.dist - dexa
	}

	vmd := curve(c.bv1, c.bv2, c.xv1, c.xv2, c.xv3, de)
	sgtm := curve(c.bsm1, c.bsm2, c.xsm1, c.xsm2, c.xsm3, de) * gm
	sgtp := curve(c.bsp1, c.bsp2, c.xsp1, c.xsp2, c.xsp3, de) * gp
	sgtd := sgtp * c.bsd1
	tgtd := (sgtp - sgtd) * c.bzd1

	var sgl float64
	if !noLocation {
		q := (1 - 0.8*math.Exp(-p.dist/50e3)) * p.dh * p.wn
		sgl = 10 * q / (q + 13)
	}
	var vs0 float64
	if !noSituation {
		vs0 = math.Pow(5+3*math.Exp(-de/100e3), 2)
	}

	switch kdv {
	case MDVarSingleMessage:
		zt, zl = zc, zc
	case MDVarAccidental:
		zl = zc
	case MDVarMobile:
		zl = zt
	}

	if math.Abs(zt) > 3.1 || math.Abs(zl) > 3.1 || math.Abs(zc) > 3.1 {
		p.warnings |= WarnExtremeVariabilities
	}

	var sgt float64
	switch {
	case zt < 0:
		sgt = sgtm
	case zt <= c.bzd1:
		sgt = sgtp
	default:
		sgt = sgtd + tgtd/zt
	}

	const rt, rl = 7.8, 24.0
	vs := vs0 + math.Pow(sgt*zt, 2)/(rt+zc*zc) + math.Pow(sgl*zl, 2)/(rl+zc*zc)

	var yr, sgc float64
	switch kdv {
	case MDVarSingleMessage:
		sgc = math.Sqrt(sgt*sgt + sgl*sgl + vs)
	case MDVarAccidental:
		yr = sgt * zt
		sgc = math.Sqrt(sgl*sgl + vs)
	case MDVarMobile:
		yr = math.Sqrt(sgt*sgt+sgl*sgl) * zt
		sgc = math.Sqrt(vs)
	default:
		yr = sgt*zt + sgl*zl
		sgc = math.Sqrt(vs)
	}

	a := p.aref - vmd - yr - sgc*zc
	if a < 0 {
		a = a * (29 - a) / (29 - 10*a)
	}
	return a
}

func curve(c1, c2, x1, x2, x3, de float64) float64 {
	r := (de - x2) / x3
	s := (de / x1) * (de / x1)
	return (c1 + c2/(1+r*r)) * s / (1 + s)
}

// icdf is the inverse complementary cumulative normal distribution,
// accurate to about 4.5e-4.
func icdf(q float64) float64 {
	const (
		c0 = 2.515516698
		c1 = 0.802853
		c2 = 0.010328
		d1 = 1.432788
		d2 = 0.189269
		d3 = 0.001308
	)
	x := 0.5 - q
	t := max(0.5-math.Abs(x), 0.000001)
	t = math.Sqrt(-2 * math.Log(t))
	v := t - ((c2*t+c1)*t+c0)/(((d3*t+d2)*t+d1)*t+1)
	if x < 0 {
		v = -v
	}
	return v
}

func validMDVar(mdvar int) bool {
	if mdvar < 0 || mdvar > 33 {
		return false
	}
	return mdvar%10 <= MDVarBroadcast
}
