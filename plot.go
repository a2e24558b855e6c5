// plot.go --  This file is part of gobands project.
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

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotBandCut draws the band energies along kx at fixed ky index iky, one
// line per band, and saves the figure to fname (format from the extension).
func PlotBandCut(g *KGrid, E [][][]float64, iky int, title, fname string) error {
	return plotCut(g, E, iky, title, "E (eV)", fname)
}

// PlotBerryCut draws the Berry curvature along kx at fixed ky index iky.
func PlotBerryCut(g *KGrid, omega [][][]float64, iky int, title, fname string) error {
	return plotCut(g, omega, iky, title, "Omega (m^2)", fname)
}

func plotCut(g *KGrid, field [][][]float64, iky int, title, ylabel, fname string) error {
	if iky < 0 || iky >= g.Nky() {
		return fmt.Errorf("ky index %d out of range [0, %d)", iky, g.Nky())
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "kx (1/m)"
	p.Y.Label.Text = ylabel
	for b := range field {
		pts := make(plotter.XYs, g.Nkx())
		for i := range pts {
			pts[i].X = g.Kx[i]
			pts[i].Y = field[b][i][iky]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(b)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("band %d", b), l)
	}
	return p.Save(14*vg.Centimeter, 10*vg.Centimeter, fname)
}
