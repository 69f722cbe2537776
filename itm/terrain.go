package itm

import (
	"math"
	"slices"
)

// validProfile reports whether pfl follows the ITM profile convention and
// holds every point it declares.
func validProfile(pfl []float64) bool {
	if len(pfl) < 3 {
		return false
	}
	if !(pfl[0] >= 1) || pfl[0] > float64(len(pfl)-3) {
		return false
	}
	if !(pfl[1] > 0) || math.IsInf(pfl[1], 0) {
		return false
	}
	np := int(pfl[0])
	for _, z := range pfl[2 : np+3] {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return false
		}
	}
	return true
}

// systemHeight averages the profile over its middle 80 percent.
func systemHeight(pfl []float64) float64 {
	np := int(pfl[0])
	p10 := int(0.1 * float64(np))
	sum := 0.0
	for i := p10; i <= np-p10; i++ {
		sum += pfl[i+2]
	}
	return sum / float64(np-2*p10+1)
}

// findHorizons sets the horizon angles and distances of both terminals.
// The receiver horizon is only searched once the transmitter view is
// obstructed.
func (p *path) findHorizons(pfl []float64) {
	np := int(pfl[0])
	xi := pfl[1]
	za := pfl[2] + p.hg[0]
	zb := pfl[np+2] + p.hg[1]

	qc := 0.5 * p.gme
	q := qc * p.dist

	p.the[1] = (zb - za) / p.dist
	p.the[0] = p.the[1] - q
	p.the[1] = -p.the[1] - q
	p.dl = [2]float64{p.dist, p.dist}

	if np < 2 {
		return
	}

	sa, sb := 0.0, p.dist
	visible := true
	for i := 1; i < np; i++ {
		sa += xi
		sb -= xi
		q = pfl[i+2] - (qc*sa+p.the[0])*sa - za
		if q > 0 {
			p.the[0] += q / sa
			p.dl[0] = sa
			visible = false
		}
		if !visible {
			q = pfl[i+2] - (qc*sb+p.the[1])*sb - zb
			if q > 0 {
				p.the[1] += q / sb
				p.dl[1] = sb
			}
		}
	}
}

// fitLine computes a least squares line through the profile points between
// x1 and x2 (meters) and returns its heights at both path ends.
func fitLine(z []float64, x1, x2 float64) (z0, zn float64) {
	xn := z[0]
	xa := math.Trunc(dim(x1/z[1], 0))
	xb := xn - math.Trunc(dim(xn, x2/z[1]))
	if xb <= xa {
		xa = dim(xa, 1)
		xb = xn - dim(xn, xb+1)
	}

	ja := int(xa)
	jb := int(xb)
	n := jb - ja
	xa = xb - xa
	x := -0.5 * xa
	xb += x

	a, b := 0.0, 0.0
	for range n + 1 {
		a += z[ja+2]
		b += z[ja+2] * x
		x++
		ja++
	}
	a /= xa + 1
	b = b * 12 / ((xa*xa + 2) * xa)

	return a - b*xb, a + b*(xn-xb)
}

// terrainIrregularity computes delta h, the interdecile range of terrain
// heights between x1 and x2 after removing the linear trend.
func terrainIrregularity(pfl []float64, x1, x2 float64) float64 {
	np := int(pfl[0])
	xa := x1 / pfl[1]
	xb := x2 / pfl[1]
	if xb-xa < 2 {
		return 0
	}

	ka := min(max(4, int(0.1*(xb-xa+8))), 25)
	n := 10*ka - 5
	kb := n - ka + 1
	sn := float64(n - 1)

	s := make([]float64, n+2)
	s[0] = sn
	s[1] = 1

	xb = (xb - xa) / sn
	k := int(xa + 1)
	xa -= float64(k)
	for j := range n {
		for xa > 0 && k < np {
			xa--
			k++
		}
		s[j+2] = pfl[k+2] + (pfl[k+2]-pfl[k+1])*xa
		xa += xb
	}

	xa, xb = fitLine(s, 0, sn)
	xb = (xb - xa) / sn
	for j := range n {
		s[j+2] -= xa
		xa += xb
	}

	samples := s[2:]
	dh := largest(samples, ka-1) - largest(samples, kb-1)
	return dh / (1 - 0.8*math.Exp(-(x2-x1)/50e3))
}

// largest returns the (k+1)-th largest value of a, with k clamped to the
// slice bounds.
func largest(a []float64, k int) float64 {
	sorted := slices.Clone(a)
	slices.Sort(sorted)
	k = min(max(0, k), len(sorted)-1)
	return sorted[len(sorted)-1-k]
}

// dim is the FORTRAN positive difference.
func dim(x, y float64) float64 {
	if x > y {
		return x - y
	}
	return 0
}
