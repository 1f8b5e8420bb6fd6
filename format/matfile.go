package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
)

// MATLAB level 5 data types
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
)

// MATLAB array classes
const (
	mxCHAR   = 4
	mxSPARSE = 5
	mxDOUBLE = 6
	mxUINT64 = 15
)

const matHeaderLen = 128

// MatVar is a numeric or char array read from a MAT file. Dims are kept as
// stored; Data is column-major.
type MatVar struct {
	Name  string
	Class int
	Dims  []int
	Data  []float64
	Text  string
}

// Scalar returns the first element of a numeric variable.
func (v MatVar) Scalar() (float64, bool) {
	if len(v.Data) == 0 {
		return 0, false
	}
	return v.Data[0], true
}

// ReadMAT decodes every numeric and char variable of a MAT v5 file.
// Cells, structs and sparse arrays are skipped.
func ReadMAT(r io.Reader) (map[string]MatVar, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < matHeaderLen {
		return nil, fmt.Errorf("mat file too short: %d bytes", len(raw))
	}
	var order binary.ByteOrder
	switch string(raw[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a MAT v5 file")
	}
	vars := map[string]MatVar{}
	if err := readElements(raw[matHeaderLen:], order, vars); err != nil {
		return nil, err
	}
	return vars, nil
}

type element struct {
	typ  uint32
	data []byte
}

// nextElement parses one tagged element and returns the bytes that follow it.
func nextElement(buf []byte, order binary.ByteOrder) (element, []byte, error) {
	if len(buf) < 8 {
		return element{}, nil, fmt.Errorf("truncated element tag")
	}
	first := order.Uint32(buf[0:4])
	if small := first >> 16; small != 0 {
		n := int(small)
		if n > 4 {
			return element{}, nil, fmt.Errorf("invalid small element size %d", n)
		}
		return element{typ: first & 0xffff, data: buf[4 : 4+n]}, buf[8:], nil
	}
	n := int(order.Uint32(buf[4:8]))
	if 8+n > len(buf) {
		return element{}, nil, fmt.Errorf("element of %d bytes overruns file", n)
	}
	e := element{typ: first, data: buf[8 : 8+n]}
	next := 8 + n
	if first != miCOMPRESSED {
		next += (8 - n%8) % 8
	}
	if next > len(buf) {
		next = len(buf)
	}
	return e, buf[next:], nil
}

func readElements(buf []byte, order binary.ByteOrder, vars map[string]MatVar) error {
	for len(buf) > 0 {
		e, rest, err := nextElement(buf, order)
		if err != nil {
			return err
		}
		buf = rest
		switch e.typ {
		case miCOMPRESSED:
			zr, err := zlib.NewReader(bytes.NewReader(e.data))
			if err != nil {
				return fmt.Errorf("compressed element: %w", err)
			}
			inflated, err := io.ReadAll(zr)
			_ = zr.Close()
			if err != nil {
				return fmt.Errorf("compressed element: %w", err)
			}
			if err := readElements(inflated, order, vars); err != nil {
				return err
			}
		case miMATRIX:
			v, ok, err := readMatrix(e.data, order)
			if err != nil {
				return err
			}
			if ok {
				vars[v.Name] = v
			}
		}
	}
	return nil
}

func readMatrix(buf []byte, order binary.ByteOrder) (MatVar, bool, error) {
	if len(buf) == 0 {
		return MatVar{}, false, nil
	}
	flags, buf, err := nextElement(buf, order)
	if err != nil {
		return MatVar{}, false, err
	}
	if len(flags.data) < 4 {
		return MatVar{}, false, fmt.Errorf("invalid array flags")
	}
	class := int(order.Uint32(flags.data[0:4]) & 0xff)

	dimsEl, buf, err := nextElement(buf, order)
	if err != nil {
		return MatVar{}, false, err
	}
	dims := make([]int, 0, len(dimsEl.data)/4)
	for i := 0; i+4 <= len(dimsEl.data); i += 4 {
		dims = append(dims, int(int32(order.Uint32(dimsEl.data[i:i+4]))))
	}

	nameEl, buf, err := nextElement(buf, order)
	if err != nil {
		return MatVar{}, false, err
	}
	v := MatVar{Name: string(nameEl.data), Class: class, Dims: dims}

	if class < mxCHAR || class > mxUINT64 || class == mxSPARSE {
		return v, false, nil
	}
	if len(buf) == 0 {
		return v, true, nil
	}
	re, _, err := nextElement(buf, order)
	if err != nil {
		return MatVar{}, false, err
	}
	values, err := decodeNumbers(re, order)
	if err != nil {
		return MatVar{}, false, fmt.Errorf("variable %s: %w", v.Name, err)
	}
	if class == mxCHAR {
		v.Text = decodeText(re, values)
		return v, true, nil
	}
	v.Data = values
	return v, true, nil
}

func decodeText(e element, values []float64) string {
	if e.typ == miUTF8 || e.typ == miINT8 || e.typ == miUINT8 {
		return string(e.data)
	}
	units := make([]uint16, len(values))
	for i, f := range values {
		units[i] = uint16(f)
	}
	return string(utf16.Decode(units))
}

func decodeNumbers(e element, order binary.ByteOrder) ([]float64, error) {
	d := e.data
	var size int
	switch e.typ {
	case miINT8, miUINT8, miUTF8:
		size = 1
	case miINT16, miUINT16, miUTF16:
		size = 2
	case miINT32, miUINT32, miSINGLE:
		size = 4
	case miDOUBLE, miINT64, miUINT64:
		size = 8
	default:
		return nil, fmt.Errorf("unsupported data type %d", e.typ)
	}
	out := make([]float64, len(d)/size)
	for i := range out {
		b := d[i*size : (i+1)*size]
		switch e.typ {
		case miINT8:
			out[i] = float64(int8(b[0]))
		case miUINT8, miUTF8:
			out[i] = float64(b[0])
		case miINT16:
			out[i] = float64(int16(order.Uint16(b)))
		case miUINT16, miUTF16:
			out[i] = float64(order.Uint16(b))
		case miINT32:
			out[i] = float64(int32(order.Uint32(b)))
		case miUINT32:
			out[i] = float64(order.Uint32(b))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case miDOUBLE:
			out[i] = math.Float64frombits(order.Uint64(b))
		case miINT64:
			out[i] = float64(int64(order.Uint64(b)))
		case miUINT64:
			out[i] = float64(order.Uint64(b))
		}
	}
	return out, nil
}

// WriteMAT encodes variables as a little-endian MAT v5 file. Numeric variables
// are stored as column vectors of doubles, text as char row vectors.
func WriteMAT(w io.Writer, vars []MatVar, compress bool) error {
	header := make([]byte, matHeaderLen)
	copy(header, strings.Repeat(" ", 116))
	copy(header, "MATLAB 5.0 MAT-file, birdsong-lab")
	binary.LittleEndian.PutUint16(header[124:126], 0x0100)
	copy(header[126:128], "IM")
	if _, err := w.Write(header); err != nil {
		return err
	}
	for _, v := range vars {
		m := encodeMatrix(v)
		if compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			if _, err := zw.Write(m); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			m = append(tag(miCOMPRESSED, z.Len()), z.Bytes()...)
		}
		if _, err := w.Write(m); err != nil {
			return err
		}
	}
	return nil
}

func tag(typ, n int) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(typ))
	binary.LittleEndian.PutUint32(b[4:8], uint32(n))
	return b
}

func padded(typ int, data []byte) []byte {
	out := append(tag(typ, len(data)), data...)
	if rem := len(data) % 8; rem != 0 {
		out = append(out, make([]byte, 8-rem)...)
	}
	return out
}

func encodeMatrix(v MatVar) []byte {
	var flags [8]byte
	var data []byte
	rows, cols, typ := len(v.Data), 1, miDOUBLE
	if v.Text != "" || v.Class == mxCHAR {
		flags[0] = mxCHAR
		units := utf16.Encode([]rune(v.Text))
		rows, cols, typ = 1, len(units), miUINT16
		data = make([]byte, 2*len(units))
		for i, u := range units {
			binary.LittleEndian.PutUint16(data[2*i:], u)
		}
	} else {
		flags[0] = mxDOUBLE
		data = make([]byte, 8*len(v.Data))
		for i, f := range v.Data {
			binary.LittleEndian.PutUint64(data[8*i:], math.Float64bits(f))
		}
	}
	var body bytes.Buffer
	body.Write(padded(miUINT32, flags[:]))
	body.Write(padded(miINT32, dims(rows, cols)))
	body.Write(padded(miINT8, []byte(v.Name)))
	body.Write(padded(typ, data))
	return append(tag(miMATRIX, body.Len()), body.Bytes()...)
}

func dims(rows, cols int) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(rows))
	binary.LittleEndian.PutUint32(b[4:8], uint32(cols))
	return b
}
