// microscopic.go --  This file is part of gobands project.
//
//	gobands is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package bands

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MassField is the effective-mass tensor per band and k point in units of
// the electron mass: M[band][ikx][iky] is the 2x2 inverse of the band's
// curvature tensor (1/hbar^2) d^2E/dk_i dk_j. Rows and columns are (kx, ky).
type MassField struct {
	Nkx, Nky int
	M        [][][][2][2]float64
}

// EffectiveMass computes the effective-mass tensor of the four bands by
// second-order finite differencing of the band energies. The band dimension
// must be exactly 4. Points where the curvature tensor is singular (flat
// bands) come out as NaN instead of aborting the computation.
func EffectiveMass(g *KGrid, E [][][]float64, c Constants) (*MassField, error) {
	if len(E) != 4 {
		return nil, fmt.Errorf("effective mass needs exactly 4 bands, got %d", len(E))
	}
	nkx, nky := g.Nkx(), g.Nky()
	for b := range E {
		if len(E[b]) != nkx {
			return nil, fmt.Errorf("band %d spans %d kx points but the grid has %d", b, len(E[b]), nkx)
		}
		for i := range E[b] {
			if len(E[b][i]) != nky {
				return nil, fmt.Errorf("band %d row %d spans %d ky points but the grid has %d", b, i, len(E[b][i]), nky)
			}
		}
	}
	mf := &MassField{Nkx: nkx, Nky: nky, M: make([][][][2][2]float64, len(E))}
	h2 := c.Hbar * c.Hbar
	inv := mat.NewDense(2, 2, nil)
	tens := mat.NewDense(2, 2, nil)
	for b := range E {
		dkx := gradX(E[b], g.Kx)
		dky := gradY(E[b], g.Ky)
		dxdx := gradX(dkx, g.Kx)
		dxdy := gradY(dkx, g.Ky)
		dydx := gradX(dky, g.Kx)
		dydy := gradY(dky, g.Ky)

		mf.M[b] = make([][][2][2]float64, nkx)
		for i := 0; i < nkx; i++ {
			mf.M[b][i] = make([][2][2]float64, nky)
			for j := 0; j < nky; j++ {
				tens.Set(0, 0, dxdx[i][j]/h2)
				tens.Set(0, 1, dydx[i][j]/h2)
				tens.Set(1, 0, dxdy[i][j]/h2)
				tens.Set(1, 1, dydy[i][j]/h2)
				if err := inv.Inverse(tens); err != nil {
					mf.M[b][i][j] = [2][2]float64{
						{math.NaN(), math.NaN()},
						{math.NaN(), math.NaN()},
					}
					continue
				}
				mf.M[b][i][j] = [2][2]float64{
					{inv.At(0, 0) / c.Me, inv.At(0, 1) / c.Me},
					{inv.At(1, 0) / c.Me, inv.At(1, 1) / c.Me},
				}
			}
		}
	}
	return mf, nil
}

// Occupation evaluates the Fermi-Dirac distribution per band and k point for
// Fermi energy fermi (eV) and temperature T (K). Temperatures below 1e-10 K
// are clamped to that floor, approximating the zero-temperature step. Entries
// with E < 0 report the hole occupation 1 - f instead, flipping the
// convention below the charge-neutrality reference.
func Occupation(E [][][]float64, fermi, T float64, c Constants) [][][]float64 {
	if T < 1e-10 {
		T = 1e-10
	}
	kt := c.KB * T
	f := make([][][]float64, len(E))
	for b := range E {
		f[b] = make([][]float64, len(E[b]))
		for i := range E[b] {
			f[b][i] = make([]float64, len(E[b][i]))
			for j, e := range E[b][i] {
				v := 1 / (1 + math.Exp((e-fermi)/kt))
				if e < 0 {
					v = 1 - v
				}
				f[b][i][j] = v
			}
		}
	}
	return f
}

// CheckOccupationBoundaries reports the bands whose occupation exceeds thresh
// anywhere on the four edges of the k window. A non-empty result means the
// window is too small to hold the occupied region; it is a diagnostic, the
// data is not altered. A thresh <= 0 selects the default 0.01.
func CheckOccupationBoundaries(f [][][]float64, thresh float64) []int {
	if thresh <= 0 {
		thresh = 0.01
	}
	var bad []int
	for b := range f {
		nkx := len(f[b])
		nky := len(f[b][0])
		ok := true
		for j := 0; j < nky && ok; j++ {
			if f[b][0][j] > thresh || f[b][nkx-1][j] > thresh {
				ok = false
			}
		}
		for i := 0; i < nkx && ok; i++ {
			if f[b][i][0] > thresh || f[b][i][nky-1] > thresh {
				ok = false
			}
		}
		if !ok {
			bad = append(bad, b)
		}
	}
	return bad
}

// gradient1D is the second-order finite difference of samples f on the
// (possibly non-uniform) coordinate axis x, matching numpy.gradient with
// edge_order=2: three-point central stencils inside, one-sided three-point
// stencils on the two edges. With only two samples it falls back to the
// first-order two-point slope, where numpy refuses edge_order=2.
func gradient1D(f, x []float64) []float64 {
	n := len(f)
	res := make([]float64, n)
	if n == 2 {
		d := (f[1] - f[0]) / (x[1] - x[0])
		res[0], res[1] = d, d
		return res
	}
	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		res[i] = (hs*hs*f[i+1] + (hd*hd-hs*hs)*f[i] - hd*hd*f[i-1]) / (hs * hd * (hs + hd))
	}
	h1 := x[1] - x[0]
	h2 := x[2] - x[1]
	res[0] = -(2*h1+h2)/(h1*(h1+h2))*f[0] + (h1+h2)/(h1*h2)*f[1] - h1/(h2*(h1+h2))*f[2]
	h1 = x[n-2] - x[n-3]
	h2 = x[n-1] - x[n-2]
	res[n-1] = h2/(h1*(h1+h2))*f[n-3] - (h1+h2)/(h1*h2)*f[n-2] + (2*h2+h1)/(h2*(h1+h2))*f[n-1]
	return res
}

// gradX differentiates a [ikx][iky] field along kx.
func gradX(field [][]float64, kx []float64) [][]float64 {
	nkx := len(field)
	nky := len(field[0])
	res := make([][]float64, nkx)
	for i := range res {
		res[i] = make([]float64, nky)
	}
	col := make([]float64, nkx)
	for j := 0; j < nky; j++ {
		for i := 0; i < nkx; i++ {
			col[i] = field[i][j]
		}
		d := gradient1D(col, kx)
		for i := 0; i < nkx; i++ {
			res[i][j] = d[i]
		}
	}
	return res
}

// gradY differentiates a [ikx][iky] field along ky.
func gradY(field [][]float64, ky []float64) [][]float64 {
	res := make([][]float64, len(field))
	for i := range field {
		res[i] = gradient1D(field[i], ky)
	}
	return res
}
