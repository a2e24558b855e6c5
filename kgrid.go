// kgrid.go --  This file is part of gobands project.
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

import "fmt"

// KGrid is the rectangular window of k-space on which all fields are
// evaluated. Kx and Ky are the strictly increasing 1D axes; MeshX and MeshY
// are their outer product with 'ij' indexing, so MeshX[i][j] == Kx[i] and
// MeshY[i][j] == Ky[j]. Every field in this package uses the same
// [ikx][iky] convention.
type KGrid struct {
	Kx, Ky       []float64
	MeshX, MeshY [][]float64
}

// NewKGrid builds the window [kxmin, kxmax] x [kymin, kymax] sampled on
// nkx x nky equally spaced points. Both counts must be at least 2 and the
// limits strictly increasing.
func NewKGrid(kxmin, kxmax, kymin, kymax float64, nkx, nky int) (*KGrid, error) {
	if nkx < 2 || nky < 2 {
		return nil, fmt.Errorf("k-grid needs at least 2 points per axis, got %d x %d", nkx, nky)
	}
	if kxmax <= kxmin || kymax <= kymin {
		return nil, fmt.Errorf("k-grid limits must be strictly increasing: kx [%g, %g], ky [%g, %g]",
			kxmin, kxmax, kymin, kymax)
	}
	g := &KGrid{
		Kx: linspace(kxmin, kxmax, nkx),
		Ky: linspace(kymin, kymax, nky),
	}
	g.MeshX = make([][]float64, nkx)
	g.MeshY = make([][]float64, nkx)
	for i := 0; i < nkx; i++ {
		g.MeshX[i] = make([]float64, nky)
		g.MeshY[i] = make([]float64, nky)
		for j := 0; j < nky; j++ {
			g.MeshX[i][j] = g.Kx[i]
			g.MeshY[i][j] = g.Ky[j]
		}
	}
	return g, nil
}

// Nkx returns the number of points along kx.
func (g *KGrid) Nkx() int { return len(g.Kx) }

// Nky returns the number of points along ky.
func (g *KGrid) Nky() int { return len(g.Ky) }

func linspace(lo, hi float64, n int) []float64 {
	res := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range res {
		res[i] = lo + float64(i)*step
	}
	res[n-1] = hi // avoid accumulated rounding on the endpoint
	return res
}
