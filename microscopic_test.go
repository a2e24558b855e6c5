// microscopic_test.go --  This file is part of gobands project.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadraticBands fills four identical anisotropic parabolic bands
// E = hbar^2 kx^2/(2 ma) + hbar^2 ky^2/(2 mb).
func quadraticBands(g *KGrid, ma, mb float64, c Constants) [][][]float64 {
	E := make([][][]float64, 4)
	for b := range E {
		E[b] = make([][]float64, g.Nkx())
		for i := range E[b] {
			E[b][i] = make([]float64, g.Nky())
			for j := range E[b][i] {
				kx, ky := g.Kx[i], g.Ky[j]
				E[b][i][j] = c.Hbar*c.Hbar*kx*kx/(2*ma) + c.Hbar*c.Hbar*ky*ky/(2*mb)
			}
		}
	}
	return E
}

func TestEffectiveMassQuadraticBand(t *testing.T) {
	c := SI()
	g, err := NewKGrid(-2e8, 2e8, -2e8, 2e8, 9, 9)
	require.NoError(t, err)
	ma, mb := 0.3*c.Me, 0.7*c.Me
	E := quadraticBands(g, ma, mb, c)

	mf, err := EffectiveMass(g, E, c)
	require.NoError(t, err)

	// Central differences are exact on a quadratic; check an interior point.
	for b := 0; b < 4; b++ {
		tens := mf.M[b][4][4]
		assert.InEpsilon(t, 0.3, tens[0][0], 1e-6, "band %d m_xx", b)
		assert.InEpsilon(t, 0.7, tens[1][1], 1e-6, "band %d m_yy", b)
		assert.InDelta(t, 0, tens[0][1], 1e-6)
		assert.InDelta(t, 0, tens[1][0], 1e-6)
	}
}

func TestEffectiveMassWrongBandCount(t *testing.T) {
	c := SI()
	g, err := NewKGrid(-1e8, 1e8, -1e8, 1e8, 4, 4)
	require.NoError(t, err)
	E := quadraticBands(g, c.Me, c.Me, c)[:2]
	mf, err := EffectiveMass(g, E, c)
	require.Error(t, err)
	require.Nil(t, mf)
}

func TestEffectiveMassShapeMismatch(t *testing.T) {
	c := SI()
	g, err := NewKGrid(-1e8, 1e8, -1e8, 1e8, 5, 5)
	require.NoError(t, err)

	E := quadraticBands(g, c.Me, c.Me, c)
	E[2] = E[2][:3] // band narrower than the grid along kx
	mf, err := EffectiveMass(g, E, c)
	require.Error(t, err)
	require.Nil(t, mf)

	E = quadraticBands(g, c.Me, c.Me, c)
	E[1][4] = E[1][4][:2] // ragged row along ky
	mf, err = EffectiveMass(g, E, c)
	require.Error(t, err)
	require.Nil(t, mf)
}

func TestEffectiveMassFlatBandSingular(t *testing.T) {
	c := SI()
	g, err := NewKGrid(-1e8, 1e8, -1e8, 1e8, 5, 5)
	require.NoError(t, err)
	E := make([][][]float64, 4)
	for b := range E {
		E[b] = make([][]float64, 5)
		for i := range E[b] {
			E[b][i] = make([]float64, 5)
			for j := range E[b][i] {
				E[b][i][j] = 0.1 // flat band, zero curvature tensor
			}
		}
	}
	mf, err := EffectiveMass(g, E, c)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mf.M[0][2][2][0][0]))
	assert.True(t, math.IsNaN(mf.M[3][2][2][1][1]))
}

func TestOccupationStepAtFermiLevel(t *testing.T) {
	E := [][][]float64{{{0, 0}, {0, 0}}}
	f := Occupation(E, 0, 0, SI())
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.Equal(t, 0.5, f[0][i][j])
		}
	}
}

func TestOccupationLimits(t *testing.T) {
	c := SI()
	tests := []struct {
		name     string
		e, ef, T float64
		want     float64
	}{
		// E < 0 reports the hole occupation 1-f.
		{"deep below EF, hole convention", -1, 0, 300, 0},
		{"deep above EF", 1, 0, 300, 0},
		{"hole band above its EF", -1, -2, 300, 1},
		{"electron band below EF", 1, 2, 300, 1},
		{"zero temperature clamps, not divides", 0.1, 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			E := [][][]float64{{{tc.e, tc.e}, {tc.e, tc.e}}}
			f := Occupation(E, tc.ef, tc.T, c)
			assert.InDelta(t, tc.want, f[0][1][1], 1e-9)
		})
	}
}

func TestOccupationRange(t *testing.T) {
	c := SI()
	g, err := NewKGrid(-1e8, 1e8, -1e8, 1e8, 6, 6)
	require.NoError(t, err)
	E := quadraticBands(g, 0.2*c.Me, 0.4*c.Me, c)
	f := Occupation(E, 0.01, 77, c)
	for b := range f {
		for i := range f[b] {
			for j := range f[b][i] {
				assert.GreaterOrEqual(t, f[b][i][j], 0.0)
				assert.LessOrEqual(t, f[b][i][j], 1.0)
			}
		}
	}
}

func TestCheckOccupationBoundaries(t *testing.T) {
	decayed := [][][]float64{
		{{0.001, 0.002, 0.001}, {0.003, 0.9, 0.002}, {0.001, 0.004, 0.001}},
		{{0.0, 0.0, 0.0}, {0.0, 0.5, 0.0}, {0.0, 0.0, 0.0}},
	}
	require.Empty(t, CheckOccupationBoundaries(decayed, 0.01))

	leaking := [][][]float64{
		{{0.001, 0.002, 0.001}, {0.003, 0.9, 0.002}, {0.001, 0.004, 0.001}},
		{{0.0, 0.05, 0.0}, {0.0, 0.5, 0.0}, {0.0, 0.0, 0.0}},
	}
	require.Equal(t, []int{1}, CheckOccupationBoundaries(leaking, 0.01))

	// thresh <= 0 selects the 0.01 default
	require.Equal(t, []int{1}, CheckOccupationBoundaries(leaking, 0))
}
