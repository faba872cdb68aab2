// Package journal records the inputs applied during a match so the fight
// can be re-simulated later. A journal is a msgpack stream: one Header
// followed by Records in the order the server applied them.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/automoto/duelcore/shared/leveldata"
	"github.com/automoto/duelcore/shared/netconfig"
)

// Version is bumped whenever Header or Record change shape.
const Version = 2

var ErrVersion = errors.New("journal: unsupported version")

// Kind says what a Record holds.
type Kind uint8

const (
	KindInput Kind = iota + 1 // one applied client input
	KindTick                  // one server tick of dt seconds
)

// Header identifies the match a journal belongs to.
type Header struct {
	Version      int    `codec:"v"`
	Started      int64  `codec:"started"` // Unix ms
	RedUsername  string `codec:"red"`
	BlueUsername string `codec:"blue"`
	RedFighter   uint32 `codec:"red_fighter"`
	BlueFighter  uint32 `codec:"blue_fighter"`

	// Stage is the geometry the match was played on; nil for the default
	// stage width and spawns.
	Stage *leveldata.Stage `codec:"stage,omitempty"`
}

// Record is one journal entry.
type Record struct {
	Kind     Kind             `codec:"k"`
	Tick     uint64           `codec:"t"`
	Color    netconfig.Color  `codec:"c,omitempty"`
	Sequence uint32           `codec:"s,omitempty"`
	Button   netconfig.Button `codec:"b,omitempty"`
	Pressed  bool             `codec:"p,omitempty"`
	Dt       float64          `codec:"dt"`
}

func handle() *codec.MsgpackHandle {
	return &codec.MsgpackHandle{}
}

// Writer appends records to a journal.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	enc    *codec.Encoder
}

// NewWriter writes h to w and returns a Writer for the records that follow.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	h.Version = Version
	bw := bufio.NewWriter(w)
	jw := &Writer{w: bw, enc: codec.NewEncoder(bw, handle())}
	if c, ok := w.(io.Closer); ok {
		jw.closer = c
	}
	if err := jw.enc.Encode(h); err != nil {
		return nil, fmt.Errorf("write journal header: %w", err)
	}
	return jw, nil
}

// Create opens a new journal file in dir named after the match start time.
func Create(dir string, h Header) (*Writer, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create journal dir: %w", err)
	}
	if h.Started == 0 {
		h.Started = time.Now().UnixMilli()
	}
	stamp := time.UnixMilli(h.Started).UTC().Format("20060102-150405.000")
	name := filepath.Join(dir, fmt.Sprintf("match-%s.mpk", stamp))
	f, err := os.Create(name)
	if err != nil {
		return nil, "", fmt.Errorf("create journal: %w", err)
	}
	w, err := NewWriter(f, h)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	log.Printf("[journal] recording to %s", name)
	return w, name, nil
}

// Input records one applied client input.
func (w *Writer) Input(tick uint64, c netconfig.Color, seq uint32, b netconfig.Button, pressed bool, dt float64) error {
	return w.write(Record{Kind: KindInput, Tick: tick, Color: c, Sequence: seq, Button: b, Pressed: pressed, Dt: dt})
}

// Tick records the end of a server tick.
func (w *Writer) Tick(tick uint64, dt float64) error {
	return w.write(Record{Kind: KindTick, Tick: tick, Dt: dt})
}

func (w *Writer) write(r Record) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the underlying file, if any.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Reader iterates a journal.
type Reader struct {
	Header Header
	dec    *codec.Decoder
}

// NewReader reads and validates the header.
func NewReader(r io.Reader) (*Reader, error) {
	jr := &Reader{dec: codec.NewDecoder(bufio.NewReader(r), handle())}
	if err := jr.dec.Decode(&jr.Header); err != nil {
		return nil, fmt.Errorf("read journal header: %w", err)
	}
	if jr.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, jr.Header.Version)
	}
	return jr, nil
}

// Next returns the next record, or io.EOF at the end of the journal.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read journal record: %w", err)
	}
	return rec, nil
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
