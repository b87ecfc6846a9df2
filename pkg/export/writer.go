// Package export serialises simulated trial sets for downstream plotting
// and reporting collaborators. Rendering itself happens elsewhere; this
// package only produces the wire format: a JSON header line followed by
// one JSON trial per line, optionally snappy-compressed.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-risksim/pkg/simulation"
)

// header is the first line of an export, describing the run.
type header struct {
	RunID    string `json:"run_id"`
	Seed     int64  `json:"seed"`
	Trials   int    `json:"trials"`
	Complete bool   `json:"complete"`
}

// Write streams a result as JSON lines.
func Write(w io.Writer, res *simulation.Result) error {
	if res == nil {
		return fmt.Errorf("nothing to export")
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	h := header{
		RunID:    res.RunID.String(),
		Seed:     res.Seed,
		Trials:   len(res.Trials),
		Complete: res.Complete,
	}
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for i := range res.Trials {
		if err := enc.Encode(&res.Trials[i]); err != nil {
			return fmt.Errorf("encode trial %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteCompressed streams a result as snappy-compressed JSON lines.
func WriteCompressed(w io.Writer, res *simulation.Result) error {
	sw := snappy.NewBufferedWriter(w)
	if err := Write(sw, res); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

// Read decodes an export produced by Write.
func Read(r io.Reader) (*simulation.Result, error) {
	dec := json.NewDecoder(bufio.NewReader(r))

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	res := &simulation.Result{
		Seed:     h.Seed,
		Complete: h.Complete,
		Trials:   make([]simulation.Trial, 0, h.Trials),
	}
	if err := res.RunID.UnmarshalText([]byte(h.RunID)); err != nil {
		return nil, fmt.Errorf("decode run id %q: %w", h.RunID, err)
	}

	for i := 0; i < h.Trials; i++ {
		var t simulation.Trial
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode trial %d: %w", i, err)
		}
		res.Trials = append(res.Trials, t)
	}
	return res, nil
}

// ReadCompressed decodes a snappy-compressed export.
func ReadCompressed(r io.Reader) (*simulation.Result, error) {
	return Read(snappy.NewReader(r))
}
