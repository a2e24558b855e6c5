// const.go --  This file is part of gobands project.
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

// Constants collects the physical constants entering the semiclassical
// formulas. The package works with energies in eV and wave vectors in 1/m,
// so the constants are kept in the matching mixed unit system. A Constants
// value is passed explicitly into every computation that needs one; there is
// no package-level state.
type Constants struct {
	Q    float64 // elementary charge (C)
	Hbar float64 // reduced Planck constant (eV s)
	Me   float64 // electron mass (eV s^2/m^2)
	KB   float64 // Boltzmann constant (eV/K)
	MuB  float64 // Bohr magneton (A m^2)
}

// SI returns the CODATA 2018 values in the eV-based unit system of the
// package. Me is the electron mass divided by the elementary charge, which
// absorbs the eV -> J conversion in the effective-mass formula.
func SI() Constants {
	return Constants{
		Q:    1.602176634e-19,
		Hbar: 6.582119569e-16,
		Me:   5.685630e-12,
		KB:   8.617333262e-5,
		MuB:  9.2740100783e-24,
	}
}
