// berry.go --  This file is part of gobands project.
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
	"runtime"
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// BerryField holds the Berry curvature Omega (m^2) and the orbital magnetic
// moment Mu (Bohr magnetons) per band and k point, indexed [band][ikx][iky].
// It is recomputed fresh on every BerryMu call.
type BerryField struct {
	N, Nkx, Nky int
	Omega       [][][]float64
	Mu          [][][]float64
}

// BerryMu computes Berry curvature and orbital magnetic moment from the
// diagonalized bands and the constant Hamiltonian derivatives through the
// perturbation-theory sum over band pairs,
//
//	Omega_n = -2 sum_{m != n} Im(<n|dH/dkx|m><m|dH/dky|n>) / (E_n - E_m)^2
//	Mu_n    = -(q/hbar)/muB sum_{m != n} Im(<n|dH/dkx|m><m|dH/dky|n>) / (E_n - E_m)
//
// With einsum set the matrix elements are contracted component by component;
// otherwise they come from Psi^dagger * dH * Psi triple products evaluated
// with complex BLAS Gemm calls.
// The two strategies are numerically equivalent.
//
// Degenerate bands are not special-cased: where E_n approaches E_m the
// denominators blow up and non-finite values propagate to the output for the
// caller to mask. The behavior is inherent to the perturbative formula.
func BerryMu(bs *BandSet, dm DerivativeMatrices, c Constants, einsum bool) (*BerryField, error) {
	r, cc := dm.Dkx.Dims()
	if r != bs.N || cc != bs.N {
		return nil, fmt.Errorf("derivative matrices are %dx%d but the band set has %d bands", r, cc, bs.N)
	}

	bf := &BerryField{N: bs.N, Nkx: bs.Nkx, Nky: bs.Nky}
	bf.Omega = make([][][]float64, bs.N)
	bf.Mu = make([][][]float64, bs.N)
	for b := 0; b < bs.N; b++ {
		bf.Omega[b] = make([][]float64, bs.Nkx)
		bf.Mu[b] = make([][]float64, bs.Nkx)
		for i := 0; i < bs.Nkx; i++ {
			bf.Omega[b][i] = make([]float64, bs.Nky)
			bf.Mu[b][i] = make([]float64, bs.Nky)
		}
	}

	nw := runtime.GOMAXPROCS(-1)
	if nw > bs.Nkx {
		nw = bs.Nkx
	}
	slab := bs.Nkx / nw
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		lo := w * slab
		hi := lo + slab
		if w == nw-1 {
			hi = bs.Nkx
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			berrySlab(bs, dm, bf, lo, hi, einsum)
		}(lo, hi)
	}
	wg.Wait()

	muScale := -c.Q / c.Hbar / c.MuB // C/(eV s) * eV m^2 / (A m^2) -> dimensionless
	for b := 0; b < bs.N; b++ {
		for i := 0; i < bs.Nkx; i++ {
			for j := 0; j < bs.Nky; j++ {
				bf.Omega[b][i][j] *= -2
				bf.Mu[b][i][j] *= muScale
			}
		}
	}
	return bf, nil
}

func berrySlab(bs *BandSet, dm DerivativeMatrices, bf *BerryField, lo, hi int, einsum bool) {
	n := bs.N
	cgen := func() cblas128.General {
		return cblas128.General{Rows: n, Cols: n, Stride: n, Data: make([]complex128, n*n)}
	}
	psi, tmp, m1, m2 := cgen(), cgen(), cgen(), cgen()
	dkx := dm.Dkx.RawCMatrix()
	dky := dm.Dky.RawCMatrix()
	for i := lo; i < hi; i++ {
		for j := 0; j < bs.Nky; j++ {
			if einsum {
				for bn := 0; bn < n; bn++ {
					for bm := 0; bm < n; bm++ {
						if bn == bm {
							continue
						}
						prod1 := braket(bs, bn, bm, dm.Dkx, i, j)
						prod2 := braket(bs, bm, bn, dm.Dky, i, j)
						accumulate(bs, bf, bn, bm, i, j, prod1*prod2)
					}
				}
				continue
			}
			// Psi with eigenvectors in the columns; M1 = Psi^H dkx Psi then
			// holds <n|dH/dkx|m> at (n, m), and likewise M2 for dky.
			for c := 0; c < n; c++ {
				for b := 0; b < n; b++ {
					psi.Data[c*n+b] = bs.Psi[b][c][i][j]
				}
			}
			cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, dkx, psi, 0, tmp)
			cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1, psi, tmp, 0, m1)
			cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, dky, psi, 0, tmp)
			cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1, psi, tmp, 0, m2)
			for bn := 0; bn < n; bn++ {
				for bm := 0; bm < n; bm++ {
					if bn == bm {
						continue
					}
					accumulate(bs, bf, bn, bm, i, j, m1.Data[bn*n+bm]*m2.Data[bm*n+bn])
				}
			}
		}
	}
}

// braket is the matrix element <bra| D |ket> at k point (i, j), conjugating
// the bra components.
func braket(bs *BandSet, bra, ket int, d *mat.CDense, i, j int) complex128 {
	var res complex128
	for a := 0; a < bs.N; a++ {
		var row complex128
		for l := 0; l < bs.N; l++ {
			row += d.At(a, l) * bs.Psi[ket][l][i][j]
		}
		res += conj(bs.Psi[bra][a][i][j]) * row
	}
	return res
}

func accumulate(bs *BandSet, bf *BerryField, bn, bm, i, j int, prod complex128) {
	de := bs.E[bn][i][j] - bs.E[bm][i][j]
	bf.Omega[bn][i][j] += imag(prod) / (de * de)
	bf.Mu[bn][i][j] += imag(prod) / de
}
