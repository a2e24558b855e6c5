// doc.go --  This file is part of gobands project.
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

// Package bands computes the electronic band structure of strained bilayer
// graphene on a rectangular window of k-space, together with the semiclassical
// quantities derived from it: Berry curvature, orbital magnetic moment,
// effective-mass tensor and Fermi-Dirac occupation.
//
// The pipeline is: build a Hamiltonian field with Hamiltonian, diagonalize it
// with Solve, then feed the resulting BandSet to BerryMu, EffectiveMass and
// Occupation. Energies are in eV and wave vectors in 1/m throughout; the
// physical constants enter through an explicit Constants value.
package bands
