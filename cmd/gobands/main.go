// main.go --  This file is part of gobands project.
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
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"gobands"
)

var (
	WarningLogger *log.Logger
	InfoLogger    *log.Logger
	ErrorLogger   *log.Logger
	OutputLogger  *log.Logger
)

func initLog(fname string) {
	file, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}

	InfoLogger = log.New(file, "INFO: ", log.Ldate|log.Ltime)
	WarningLogger = log.New(file, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	OutputLogger = log.New(file, "", 0)
}

func printOutputDelimiter() {
	OutputLogger.Println(strings.Repeat("-", 70))
}

// runConfig is everything the input file controls.
type runConfig struct {
	kxmin, kxmax float64
	kymin, kymax float64
	nkx, nky     int
	xi           int
	eigh         bool
	params       bands.Params
	fermi, temp  float64
	plots        bool
	compress     bool
}

func defaultConfig() runConfig {
	return runConfig{
		kxmin: -3.5e8, kxmax: 3.5e8,
		kymin: -3.5e8, kymax: 3.5e8,
		nkx: 200, nky: 200,
		xi:   1,
		eigh: true,
		temp: 0,
	}
}

func findBlockEnd(n int, data []string, bname string) int {
	for i := n; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) > 0 {
			if strings.ToLower(words[0]) == "end" {
				return i
			}
		}
	}
	ErrorLogger.Fatal("No end of block " + bname + ".")
	return 0
}

func parseFloat(s, what string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		ErrorLogger.Fatal("Parsing input. Bad value for "+what+": ", s)
	}
	return v
}

func parseInt(s, what string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		ErrorLogger.Fatal("Parsing input. Bad value for "+what+": ", s)
	}
	return v
}

func processInput(data []string) runConfig {
	cfg := defaultConfig()
	flags := []string{"twobytwo", "eig", "plots", "compress"}
	for i := 0; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "grid":
			end := findBlockEnd(i, data, "Grid")
			OutputLogger.Print("Parsing input. Grid block found at lines ", i, " -- ", end, ".")
			for l := i + 1; l < end; l++ {
				w := strings.Fields(data[l])
				if len(w) < 4 {
					continue
				}
				switch strings.ToLower(w[0]) {
				case "kx":
					cfg.kxmin = parseFloat(w[1], "kx min")
					cfg.kxmax = parseFloat(w[2], "kx max")
					cfg.nkx = parseInt(w[3], "Nkx")
				case "ky":
					cfg.kymin = parseFloat(w[1], "ky min")
					cfg.kymax = parseFloat(w[2], "ky max")
					cfg.nky = parseInt(w[3], "Nky")
				}
			}
			i = end
		case "params":
			end := findBlockEnd(i, data, "Params")
			OutputLogger.Print("Parsing input. Params block found at lines ", i, " -- ", end, ".")
			for l := i + 1; l < end; l++ {
				w := strings.Fields(data[l])
				if len(w) == 0 {
					continue
				}
				key := strings.ToLower(w[0])
				if slices.Contains(flags, key) {
					switch key {
					case "twobytwo":
						cfg.params.TwoByTwo = true
					case "eig":
						cfg.eigh = false
					case "plots":
						cfg.plots = true
					case "compress":
						cfg.compress = true
					}
					continue
				}
				if len(w) < 2 {
					ErrorLogger.Fatal("Parsing input. Missing value for keyword: ", w[0])
				}
				switch key {
				case "delta":
					cfg.params.Delta = parseFloat(w[1], "delta")
				case "strain":
					cfg.params.Strain = parseFloat(w[1], "strain")
				case "theta":
					cfg.params.Theta = parseFloat(w[1], "theta")
				case "xi":
					cfg.xi = parseInt(w[1], "xi")
				default:
					WarningLogger.Println("Parsing input. Unknown keyword ignored: ", w[0])
				}
			}
			i = end
		case "fermi":
			end := findBlockEnd(i, data, "Fermi")
			OutputLogger.Print("Parsing input. Fermi block found at lines ", i, " -- ", end, ".")
			for l := i + 1; l < end; l++ {
				w := strings.Fields(data[l])
				if len(w) < 2 {
					continue
				}
				switch strings.ToLower(w[0]) {
				case "ef":
					cfg.fermi = parseFloat(w[1], "ef")
				case "t":
					cfg.temp = parseFloat(w[1], "t")
				}
			}
			i = end
		case "nprocs":
			nprocs := parseInt(words[1], "nprocs")
			runtime.GOMAXPROCS(nprocs)
			OutputLogger.Print("Parsing input. Number of threads set to " + words[1] + ".")
		}
	}
	return cfg
}

func readFileLines(fname string) ([]string, error) {
	var result []string

	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}

func appInfo() {
	OutputLogger.Println("\ngobands -- band structure and semiclassical quantities of strained bilayer graphene")
	OutputLogger.Println("Bands, Berry curvature, orbital moment, effective mass, Fermi-Dirac occupation.")
	OutputLogger.Println()
}

func memDebug() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	OutputLogger.Printf("Alloc: %d bytes", memStats.Alloc)
	OutputLogger.Printf("TotalAlloc: %d bytes", memStats.TotalAlloc)
	OutputLogger.Printf("HeapAlloc: %d bytes", memStats.HeapAlloc)
	OutputLogger.Printf("HeapSys: %d bytes", memStats.HeapSys)
}

func main() {
	var inpFname, outFname string
	if len(os.Args) > 1 {
		inpFname = os.Args[1]
		fExt := filepath.Ext(inpFname)
		outFname = inpFname[0:len(inpFname)-len(fExt)] + ".out"
		fmt.Println("Output file: ", outFname)
	} else {
		log.Fatal("No input file.")
	}

	initLog(outFname)

	InfoLogger.Println("Starting gobands...")
	appInfo()

	OutputLogger.Println("Input file content:")
	printOutputDelimiter()
	inpData, err := readFileLines(inpFname)
	if err != nil {
		ErrorLogger.Fatal("Cannot read input file: ", err)
	}
	for _, i := range inpData {
		OutputLogger.Println(i)
	}
	printOutputDelimiter()

	cfg := processInput(inpData)
	consts := bands.SI()
	outDir := strings.TrimSuffix(inpFname, filepath.Ext(inpFname)) + "_fields"

	tstart := time.Now()
	grid, err := bands.NewKGrid(cfg.kxmin, cfg.kxmax, cfg.kymin, cfg.kymax, cfg.nkx, cfg.nky)
	if err != nil {
		ErrorLogger.Fatal("Bad grid: ", err)
	}
	field, err := bands.Hamiltonian(grid, cfg.xi, cfg.params)
	if err != nil {
		ErrorLogger.Fatal("Hamiltonian construction failed: ", err)
	}
	tstop := time.Now()
	OutputLogger.Println("Hamiltonian field built. ", tstop.Sub(tstart))
	tstart = tstop

	bs, err := bands.Solve(field, cfg.eigh)
	if err != nil {
		ErrorLogger.Fatal("Band solver failed: ", err)
	}
	tstop = time.Now()
	OutputLogger.Println("Bands diagonalized. ", tstop.Sub(tstart))
	InfoLogger.Println("Diagonalization done. ", tstop.Sub(tstart))
	tstart = tstop

	dm := bands.Derivatives(cfg.xi, cfg.params)
	bf, err := bands.BerryMu(bs, dm, consts, true)
	if err != nil {
		ErrorLogger.Fatal("Berry curvature failed: ", err)
	}
	tstop = time.Now()
	OutputLogger.Println("Berry curvature and orbital moment done. ", tstop.Sub(tstart))
	tstart = tstop

	if err := bands.SaveBands(outDir, "E_band", bs.E, cfg.compress); err != nil {
		ErrorLogger.Fatal("Writing band energies failed: ", err)
	}
	if err := bands.SaveBands(outDir, "omega_band", bf.Omega, cfg.compress); err != nil {
		ErrorLogger.Fatal("Writing Berry curvature failed: ", err)
	}
	if err := bands.SaveBands(outDir, "mu_band", bf.Mu, cfg.compress); err != nil {
		ErrorLogger.Fatal("Writing orbital moment failed: ", err)
	}

	if !cfg.params.TwoByTwo {
		mf, err := bands.EffectiveMass(grid, bs.E, consts)
		if err != nil {
			ErrorLogger.Fatal("Effective mass failed: ", err)
		}
		mxx := make([][][]float64, len(mf.M))
		for b := range mf.M {
			mxx[b] = make([][]float64, mf.Nkx)
			for i := 0; i < mf.Nkx; i++ {
				mxx[b][i] = make([]float64, mf.Nky)
				for j := 0; j < mf.Nky; j++ {
					mxx[b][i][j] = mf.M[b][i][j][0][0]
				}
			}
		}
		if err := bands.SaveBands(outDir, "mxx_band", mxx, cfg.compress); err != nil {
			ErrorLogger.Fatal("Writing effective mass failed: ", err)
		}
		tstop = time.Now()
		OutputLogger.Println("Effective mass done. ", tstop.Sub(tstart))
		tstart = tstop
	}

	occ := bands.Occupation(bs.E, cfg.fermi, cfg.temp, consts)
	for _, b := range bands.CheckOccupationBoundaries(occ, 0.01) {
		WarningLogger.Printf("Occupation in band %d not below 0.01 at the k-window boundary. Enlarge the grid.", b)
	}
	if err := bands.SaveBands(outDir, "f_band", occ, cfg.compress); err != nil {
		ErrorLogger.Fatal("Writing occupation failed: ", err)
	}
	tstop = time.Now()
	OutputLogger.Println("Occupation done. ", tstop.Sub(tstart))

	if cfg.plots {
		iky := cfg.nky / 2
		if err := bands.PlotBandCut(grid, bs.E, iky, "Band energies", filepath.Join(outDir, "bands.png")); err != nil {
			ErrorLogger.Fatal("Band plot failed: ", err)
		}
		if err := bands.PlotBerryCut(grid, bf.Omega, iky, "Berry curvature", filepath.Join(outDir, "omega.png")); err != nil {
			ErrorLogger.Fatal("Berry plot failed: ", err)
		}
	}

	memDebug()
	InfoLogger.Println("Exiting gobands...")
	fmt.Println("gobands done.")
}
