package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"unsafe"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/config"
)

const elemSize = 8 // uint64, little-endian on the wire

// alignment is the assumed block-device alignment for O_DIRECT transfers.
const alignment = 4096

// bufferPools hold reusable, page-aligned byte buffers for disk transfers,
// sized per BlockIOSize. A sync.Pool mirrors the teacher design's
// thread-local soft-reference buffer (spec §5): reclaimable under memory
// pressure, reused otherwise, without Go thread-locals.
var bufferPools sync.Map // map[int64]*sync.Pool

func bufferPool(blockBytes int64) *sync.Pool {
	if p, ok := bufferPools.Load(blockBytes); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{New: func() any {
		return alignedBuffer(blockBytes)
	}}
	actual, _ := bufferPools.LoadOrStore(blockBytes, p)
	return actual.(*sync.Pool)
}

func alignedBuffer(n int64) []byte {
	buf := make([]byte, n+alignment)
	off := alignment - int(uintptr(unsafe.Pointer(&buf[0]))%alignment)%alignment
	return buf[off : off+int(n) : off+int(n)]
}

// Disk is a temp-file-backed DataStorage of uint64 digits. Disk storage
// specializes on the widest (64-bit) digit element type: it only makes
// sense to spill to disk for transform lengths large enough that the
// narrower element types would never be selected by the strategy selector
// (component G) in the first place.
type Disk struct {
	file       *os.File
	path       string
	directMode bool
	size       int64 // element count
	blockBytes int64
	base       int64 // byte offset of element 0 within file, for subsequence views
	owned      bool  // false for subsequence views: do not delete the file on Close
	locks      *rangeLock
	closeOnce  sync.Once
}

// NewDisk creates a new disk-backed storage of the given initial element
// count, using ctx's filename generator and block I/O size.
func NewDisk(ctx *config.Context, size int64) (*Disk, error) {
	if ctx.FilenameGenerator == nil {
		return nil, fmt.Errorf("%w: context has no FilenameGenerator", apferr.ErrInvariant)
	}
	path := ctx.FilenameGenerator.Next()
	f, direct, err := openDirect(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", apferr.ErrBackingStorage, path, err)
	}
	d := &Disk{
		file:       f,
		path:       path,
		directMode: direct,
		blockBytes: ctx.BlockIOSize,
		owned:      true,
		locks:      &rangeLock{},
	}
	if err := d.SetSize(size); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Disk) Size() int64 { return d.size }

func (d *Disk) SetSize(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative size %d", apferr.ErrInvariant, n)
	}
	if err := d.file.Truncate(d.base + n*elemSize); err != nil {
		return fmt.Errorf("%w: truncate %s: %v", apferr.ErrBackingStorage, d.path, err)
	}
	d.size = n
	return nil
}

func (d *Disk) checkRange(start, end int64) error {
	if start < 0 || end < start || end > d.size {
		return fmt.Errorf("%w: range [%d,%d) out of bounds for size %d", apferr.ErrInvariant, start, end, d.size)
	}
	return nil
}

// blockBudget reports how many elements fit in one configured I/O block;
// GetArray on disk storage requires length to fit within it (spec §4.B).
func (d *Disk) blockBudget() int64 { return d.blockBytes / elemSize }

func (d *Disk) GetArray(mode Mode, start, length int64) ([]uint64, error) {
	if length > d.blockBudget() {
		return nil, fmt.Errorf("%w: requested %d elements exceeds block budget %d", apferr.ErrInvariant, length, d.blockBudget())
	}
	end := start + length
	if err := d.checkRange(start, end); err != nil {
		return nil, err
	}
	out := make([]uint64, length)
	if err := d.readAt(start, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Disk) SetArray(start int64, values []uint64) error {
	end := start + int64(len(values))
	if err := d.checkRange(start, end); err != nil {
		return err
	}
	return d.writeAt(start, values)
}

func (d *Disk) Iterator(mode Mode, start, end int64) (Iterator[uint64], error) {
	if err := d.checkRange(start, end); err != nil {
		return nil, err
	}
	if mode != Read {
		if err := d.locks.acquire(start, end); err != nil {
			return nil, err
		}
	}
	return &diskIterator{d: d, mode: mode, pos: start - 1, start: start, end: end}, nil
}

func (d *Disk) Subsequence(offset, length int64) (Storage[uint64], error) {
	end := offset + length
	if err := d.checkRange(offset, end); err != nil {
		return nil, err
	}
	return &Disk{
		file:       d.file,
		path:       d.path,
		directMode: d.directMode,
		size:       length,
		blockBytes: d.blockBytes,
		base:       d.base + offset*elemSize,
		owned:      false,
		locks:      d.locks,
	}, nil
}

// Close releases the backing temp file. Closing a subsequence view is a
// no-op: the parent owns the file and must outlive its views (spec §3).
func (d *Disk) Close() error {
	if !d.owned {
		return nil
	}
	var retErr error
	d.closeOnce.Do(func() {
		retErr = d.file.Close()
		if rmErr := os.Remove(d.path); rmErr != nil && retErr == nil {
			retErr = fmt.Errorf("%w: remove %s: %v", apferr.ErrBackingStorage, d.path, rmErr)
		}
	})
	return retErr
}

func (d *Disk) readAt(start int64, out []uint64) error {
	byteLen := int64(len(out)) * elemSize
	buf := bufferPool(d.blockBytes).Get().([]byte)
	defer bufferPool(d.blockBytes).Put(buf)
	if int64(len(buf)) < byteLen {
		buf = make([]byte, byteLen)
	}
	buf = buf[:byteLen]

	if _, err := d.file.ReadAt(buf, d.base+start*elemSize); err != nil && err != io.EOF {
		return fmt.Errorf("%w: read %s: %v", apferr.ErrBackingStorage, d.path, err)
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*elemSize:])
	}
	return nil
}

func (d *Disk) writeAt(start int64, in []uint64) error {
	byteLen := int64(len(in)) * elemSize
	buf := bufferPool(d.blockBytes).Get().([]byte)
	defer bufferPool(d.blockBytes).Put(buf)
	if int64(len(buf)) < byteLen {
		buf = make([]byte, byteLen)
	}
	buf = buf[:byteLen]

	for i, v := range in {
		binary.LittleEndian.PutUint64(buf[i*elemSize:], v)
	}
	if _, err := d.file.WriteAt(buf, d.base+start*elemSize); err != nil {
		return fmt.Errorf("%w: write %s: %v", apferr.ErrBackingStorage, d.path, err)
	}
	return nil
}

// TransferFrom streams size elements from r into the storage starting at
// pos, looping with the block-sized buffer rather than relying on a
// channel's naive default copy size (spec §4.B).
func (d *Disk) TransferFrom(r io.Reader, pos, size int64) error {
	budget := d.blockBudget()
	remaining := size
	offset := pos
	chunk := make([]uint64, 0, budget)
	for remaining > 0 {
		n := budget
		if n > remaining {
			n = remaining
		}
		chunk = chunk[:n]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return fmt.Errorf("%w: transfer-from %s: %v", apferr.ErrBackingStorage, d.path, err)
		}
		if err := d.writeAt(offset, chunk); err != nil {
			return err
		}
		offset += n
		remaining -= n
	}
	return nil
}

// TransferTo streams size elements from the storage starting at pos into w.
func (d *Disk) TransferTo(w io.Writer, pos, size int64) error {
	budget := d.blockBudget()
	remaining := size
	offset := pos
	chunk := make([]uint64, budget)
	for remaining > 0 {
		n := budget
		if n > remaining {
			n = remaining
		}
		chunk = chunk[:n]
		if err := d.readAt(offset, chunk); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, chunk); err != nil {
			return fmt.Errorf("%w: transfer-to %s: %v", apferr.ErrBackingStorage, d.path, err)
		}
		offset += n
		remaining -= n
	}
	return nil
}

type diskIterator struct {
	d          *Disk
	mode       Mode
	pos        int64
	start, end int64
	cur        uint64
	curValid   bool
	closed     bool
}

func (it *diskIterator) Get() uint64 {
	if !it.curValid {
		out := make([]uint64, 1)
		if err := it.d.readAt(it.pos, out); err != nil {
			return 0
		}
		it.cur = out[0]
		it.curValid = true
	}
	return it.cur
}

func (it *diskIterator) Set(v uint64) {
	it.cur = v
	it.curValid = true
	_ = it.d.writeAt(it.pos, []uint64{v})
}

func (it *diskIterator) Next() bool {
	it.pos++
	it.curValid = false
	return it.pos < it.end
}

func (it *diskIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.mode != Read {
		it.d.locks.release(it.start, it.end)
	}
	return nil
}
