// hamiltonian.go --  This file is part of gobands project.
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

// Tight-binding parameters of the bilayer graphene lattice.
const (
	gamma0 = 3.16      // intralayer hopping (eV)
	gamma1 = 0.381     // interlayer dimer hopping (eV)
	gamma3 = 0.38      // trigonal-warping hopping (eV)
	gamma4 = 0.14      // particle-hole asymmetry hopping (eV)
	aLatt  = 2.46e-10  // lattice constant (m)
	betaGr = 3.0       // Grueneisen parameter of the strain gauge field
)

// Params are the physical knobs of the band model.
type Params struct {
	Delta    float64 // interlayer asymmetry (eV)
	Strain   float64 // uniaxial strain magnitude (dimensionless)
	Theta    float64 // angle of the strain axis to the zigzag axis (rad)
	TwoByTwo bool    // use the reduced two-band model
}

// HamiltonianField is the Bloch Hamiltonian evaluated at every k point of a
// grid. M is indexed [ikx][iky]; every matrix is N x N complex Hermitian.
type HamiltonianField struct {
	N, Nkx, Nky int
	M           [][]*mat.CDense
}

// DerivativeMatrices holds the two constant k-derivatives dH/dkx and dH/dky
// for one valley. Both band models are linear in k, so the derivatives do not
// depend on the k point.
type DerivativeMatrices struct {
	Dkx, Dky *mat.CDense
	Valley   int
}

// hbar*v for the three velocity-like hoppings, in eV m.
func hv(gamma float64) float64 { return math.Sqrt(3) / 2 * aLatt * gamma }

// strainGauge returns the valley-independent part of the strain-induced
// gauge field in 1/m. The field enters the Hamiltonian with a factor xi,
// shifting k in opposite directions in the two valleys.
func strainGauge(p Params) (ax, ay float64) {
	ax = betaGr * p.Strain * math.Cos(2*p.Theta) / (2 * aLatt)
	ay = -betaGr * p.Strain * math.Sin(2*p.Theta) / (2 * aLatt)
	return ax, ay
}

// Hamiltonian evaluates the band Hamiltonian on every point of the grid for
// valley xi (+1 for K, -1 for K'). The four-band matrix is written in the
// (A1, B1, A2, B2) basis; with TwoByTwo set, the reduced two-band model is
// used instead.
func Hamiltonian(g *KGrid, xi int, p Params) (*HamiltonianField, error) {
	if xi != 1 && xi != -1 {
		return nil, fmt.Errorf("valley index must be +1 or -1, got %d", xi)
	}
	n := 4
	if p.TwoByTwo {
		n = 2
	}
	ax, ay := strainGauge(p)
	h := &HamiltonianField{N: n, Nkx: g.Nkx(), Nky: g.Nky()}
	h.M = make([][]*mat.CDense, h.Nkx)
	for i := 0; i < h.Nkx; i++ {
		h.M[i] = make([]*mat.CDense, h.Nky)
		for j := 0; j < h.Nky; j++ {
			kx := g.Kx[i] - float64(xi)*ax
			ky := g.Ky[j] - float64(xi)*ay
			pi := complex(float64(xi)*kx, ky)
			if p.TwoByTwo {
				h.M[i][j] = twoBandMatrix(pi, p.Delta)
			} else {
				h.M[i][j] = fourBandMatrix(pi, p.Delta)
			}
		}
	}
	return h, nil
}

// Derivatives returns dH/dkx and dH/dky for valley xi. Only the kx derivative
// carries the valley sign; the ky derivative is the same in both valleys.
func Derivatives(xi int, p Params) DerivativeMatrices {
	x := complex(float64(xi), 0) // dpi/dkx
	y := complex(0, 1)           // dpi/dky
	var dkx, dky *mat.CDense
	if p.TwoByTwo {
		dkx = twoBandDeriv(x)
		dky = twoBandDeriv(y)
	} else {
		dkx = fourBandDeriv(x)
		dky = fourBandDeriv(y)
	}
	return DerivativeMatrices{Dkx: dkx, Dky: dky, Valley: xi}
}

// fourBandMatrix builds the 4x4 Hamiltonian at complex momentum pi (1/m).
func fourBandMatrix(pi complex128, delta float64) *mat.CDense {
	v0 := complex(hv(gamma0), 0)
	v3 := complex(hv(gamma3), 0)
	v4 := complex(hv(gamma4), 0)
	g1 := complex(gamma1, 0)
	d := complex(delta/2, 0)
	pc := conj(pi)
	return mat.NewCDense(4, 4, []complex128{
		-d, v0 * pc, -v4 * pc, v3 * pi,
		v0 * pi, -d, g1, -v4 * pc,
		-v4 * pi, g1, d, v0 * pc,
		v3 * pc, -v4 * pi, v0 * pi, d,
	})
}

// fourBandDeriv builds dH/dk for dpi/dk = dp. The diagonal and the gamma1
// entry drop out; every remaining entry is the hopping velocity times dp or
// its conjugate, following the pi/pi-dagger pattern of fourBandMatrix.
func fourBandDeriv(dp complex128) *mat.CDense {
	v0 := complex(hv(gamma0), 0)
	v3 := complex(hv(gamma3), 0)
	v4 := complex(hv(gamma4), 0)
	dc := conj(dp)
	return mat.NewCDense(4, 4, []complex128{
		0, v0 * dc, -v4 * dc, v3 * dp,
		v0 * dp, 0, 0, -v4 * dc,
		-v4 * dp, 0, 0, v0 * dc,
		v3 * dc, -v4 * dp, v0 * dp, 0,
	})
}

// twoBandMatrix is the reduced gapped-Dirac model. The quadratic two-band
// projection of the bilayer would have k-dependent derivatives, so the
// reduced mode keeps the linear Dirac form instead.
func twoBandMatrix(pi complex128, delta float64) *mat.CDense {
	v0 := complex(hv(gamma0), 0)
	d := complex(delta/2, 0)
	return mat.NewCDense(2, 2, []complex128{
		d, v0 * conj(pi),
		v0 * pi, -d,
	})
}

func twoBandDeriv(dp complex128) *mat.CDense {
	v0 := complex(hv(gamma0), 0)
	return mat.NewCDense(2, 2, []complex128{
		0, v0 * conj(dp),
		v0 * dp, 0,
	})
}

func conj(z complex128) complex128 { return complex(real(z), -imag(z)) }
