// berry_test.go --  This file is part of gobands project.
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
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBerryStrategiesAgree(t *testing.T) {
	rnd := rand.New(rand.NewSource(101))
	h := randomHermitianField(rnd, 4, 5, 4)
	bs, err := Solve(h, true)
	require.NoError(t, err)
	dm := DerivativeMatrices{
		Dkx:    randomHermitian(rnd, 4),
		Dky:    randomHermitian(rnd, 4),
		Valley: 1,
	}
	c := SI()

	einsum, err := BerryMu(bs, dm, c, true)
	require.NoError(t, err)
	matprod, err := BerryMu(bs, dm, c, false)
	require.NoError(t, err)

	for b := 0; b < bs.N; b++ {
		for i := 0; i < bs.Nkx; i++ {
			for j := 0; j < bs.Nky; j++ {
				tol := 1e-10 * (1 + math.Abs(einsum.Omega[b][i][j]))
				require.InDelta(t, einsum.Omega[b][i][j], matprod.Omega[b][i][j], tol)
				tol = 1e-10 * (1 + math.Abs(einsum.Mu[b][i][j]))
				require.InDelta(t, einsum.Mu[b][i][j], matprod.Mu[b][i][j], tol)
			}
		}
	}
}

// The pairwise formula is antisymmetric under exchanging the two bands, so
// the curvature summed over all bands cancels at every k point.
func TestCurvatureSumsToZero(t *testing.T) {
	rnd := rand.New(rand.NewSource(103))
	h := randomHermitianField(rnd, 4, 4, 4)
	bs, err := Solve(h, true)
	require.NoError(t, err)
	dm := DerivativeMatrices{
		Dkx:    randomHermitian(rnd, 4),
		Dky:    randomHermitian(rnd, 4),
		Valley: 1,
	}
	bf, err := BerryMu(bs, dm, SI(), true)
	require.NoError(t, err)

	for i := 0; i < bs.Nkx; i++ {
		for j := 0; j < bs.Nky; j++ {
			sum, scale := 0.0, 0.0
			for b := 0; b < bs.N; b++ {
				sum += bf.Omega[b][i][j]
				scale += math.Abs(bf.Omega[b][i][j])
			}
			assert.InDelta(t, 0, sum, 1e-10*(1+scale))
		}
	}
}

// A Hamiltonian that stays diagonal over the whole grid has basis-vector
// eigenstates and diagonal derivatives: every off-diagonal matrix element
// vanishes and with it the curvature and the moment.
func TestDiagonalModelZeroCurvature(t *testing.T) {
	nkx, nky := 3, 3
	h := &HamiltonianField{N: 2, Nkx: nkx, Nky: nky, M: make([][]*mat.CDense, nkx)}
	for i := 0; i < nkx; i++ {
		h.M[i] = make([]*mat.CDense, nky)
		for j := 0; j < nky; j++ {
			h.M[i][j] = mat.NewCDense(2, 2, []complex128{
				complex(-1+0.1*float64(i), 0), 0,
				0, complex(1+0.1*float64(j), 0),
			})
		}
	}
	bs, err := Solve(h, true)
	require.NoError(t, err)
	dm := DerivativeMatrices{
		Dkx:    mat.NewCDense(2, 2, []complex128{0.1, 0, 0, 0}),
		Dky:    mat.NewCDense(2, 2, []complex128{0, 0, 0, 0.1}),
		Valley: 1,
	}
	bf, err := BerryMu(bs, dm, SI(), true)
	require.NoError(t, err)
	for b := 0; b < 2; b++ {
		for i := 0; i < nkx; i++ {
			for j := 0; j < nky; j++ {
				assert.InDelta(t, 0, bf.Omega[b][i][j], 1e-15)
				assert.InDelta(t, 0, bf.Mu[b][i][j], 1e-15)
			}
		}
	}
}

// The gapped-Dirac two-band model has a closed-form curvature at k = 0:
// |Omega| = (hbar v)^2 / (2 m^2) with m = Delta/2, opposite in the two bands.
func TestGappedDiracCurvature(t *testing.T) {
	g, err := NewKGrid(-1e8, 1e8, -1e8, 1e8, 5, 5)
	require.NoError(t, err)
	p := Params{Delta: 0.1, TwoByTwo: true}
	h, err := Hamiltonian(g, 1, p)
	require.NoError(t, err)
	bs, err := Solve(h, true)
	require.NoError(t, err)
	bf, err := BerryMu(bs, Derivatives(1, p), SI(), true)
	require.NoError(t, err)

	hvv := hv(gamma0)
	m := p.Delta / 2
	want := hvv * hvv / (2 * m * m)

	// center of the odd grid is exactly k = 0
	require.InEpsilon(t, want, bf.Omega[0][2][2], 1e-9)
	require.InEpsilon(t, -want, bf.Omega[1][2][2], 1e-9)

	c := SI()
	wantMu := -c.Q / c.Hbar / c.MuB * hvv * hvv / (2 * m)
	require.InEpsilon(t, wantMu, bf.Mu[0][2][2], 1e-9)
	require.InEpsilon(t, wantMu, bf.Mu[1][2][2], 1e-9)

	// the BLAS triple-product strategy reproduces the same closed form
	bfm, err := BerryMu(bs, Derivatives(1, p), c, false)
	require.NoError(t, err)
	require.InEpsilon(t, want, bfm.Omega[0][2][2], 1e-9)
	require.InEpsilon(t, -want, bfm.Omega[1][2][2], 1e-9)
	require.InEpsilon(t, wantMu, bfm.Mu[0][2][2], 1e-9)
	require.InEpsilon(t, wantMu, bfm.Mu[1][2][2], 1e-9)
}

func TestBerryDimensionMismatch(t *testing.T) {
	rnd := rand.New(rand.NewSource(107))
	h := randomHermitianField(rnd, 2, 2, 2)
	bs, err := Solve(h, true)
	require.NoError(t, err)
	dm := DerivativeMatrices{
		Dkx:    randomHermitian(rnd, 4),
		Dky:    randomHermitian(rnd, 4),
		Valley: 1,
	}
	bf, err := BerryMu(bs, dm, SI(), true)
	require.Error(t, err)
	require.Nil(t, bf)
}
