// export.go --  This file is part of gobands project.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteField2D writes a [ikx][iky] field as fixed-width text, one kx row per
// line.
func WriteField2D(w io.Writer, field [][]float64) error {
	bw := bufio.NewWriter(w)
	for i := range field {
		for j := range field[i] {
			fmt.Fprintf(bw, "%15.6e", field[i][j])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// SaveField2D writes a field to fname as text, compressing with zstd when
// compress is set (".zst" is appended to the name).
func SaveField2D(fname string, field [][]float64, compress bool) error {
	if !compress {
		f, err := os.Create(fname)
		if err != nil {
			return err
		}
		defer f.Close()
		return WriteField2D(f, field)
	}
	f, err := os.Create(fname + ".zst")
	if err != nil {
		return err
	}
	defer f.Close()
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := WriteField2D(zw, field); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// SaveBands writes a per-band field as base<n>.txt files under dir, creating
// dir if needed.
func SaveBands(dir, base string, field [][][]float64, compress bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for b := range field {
		fname := filepath.Join(dir, base+strconv.Itoa(b)+".txt")
		if err := SaveField2D(fname, field[b], compress); err != nil {
			return err
		}
	}
	return nil
}

// ReadField2D reads a field written by WriteField2D, transparently
// decompressing ".zst" files.
func ReadField2D(fname string) ([][]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if filepath.Ext(fname) == ".zst" {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	var field [][]float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		var row []float64
		for _, w := range strings.Fields(sc.Text()) {
			v, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q in %s: %w", w, fname, err)
			}
			row = append(row, v)
		}
		if len(row) > 0 {
			field = append(field, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return field, nil
}
