package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-risksim/pkg/simulation"
)

func sampleResult() *simulation.Result {
	return &simulation.Result{
		RunID:    uuid.New(),
		Seed:     42,
		Complete: true,
		Trials: []simulation.Trial{
			{Attacks: 0, TotalCost: 0},
			{Attacks: 3, TotalCost: 1234.56},
			{Attacks: 17, TotalCost: 98765.4},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	if err := Write(&buf, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if got.RunID != res.RunID {
		t.Errorf("run id = %s, want %s", got.RunID, res.RunID)
	}
	if got.Seed != res.Seed {
		t.Errorf("seed = %d, want %d", got.Seed, res.Seed)
	}
	if !got.Complete {
		t.Error("complete flag lost")
	}
	if len(got.Trials) != len(res.Trials) {
		t.Fatalf("got %d trials, want %d", len(got.Trials), len(res.Trials))
	}
	for i := range res.Trials {
		if got.Trials[i] != res.Trials[i] {
			t.Errorf("trial %d = %+v, want %+v", i, got.Trials[i], res.Trials[i])
		}
	}
}

func TestWriteReadCompressed_RoundTrip(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	if err := WriteCompressed(&buf, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.RunID != res.RunID || len(got.Trials) != len(res.Trials) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCompressed_SmallerOnRepetitiveData(t *testing.T) {
	res := &simulation.Result{RunID: uuid.New(), Seed: 1, Complete: true}
	for i := 0; i < 5000; i++ {
		res.Trials = append(res.Trials, simulation.Trial{Attacks: 2, TotalCost: 1000})
	}

	var plain, compressed bytes.Buffer
	if err := Write(&plain, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteCompressed(&compressed, res); err != nil {
		t.Fatalf("write compressed failed: %v", err)
	}

	if compressed.Len() >= plain.Len() {
		t.Errorf("compressed %d bytes, plain %d bytes", compressed.Len(), plain.Len())
	}
}

func TestWrite_NilResult(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestRead_Garbage(t *testing.T) {
	if _, err := Read(bytes.NewBufferString("not json\n")); err == nil {
		t.Error("expected error for malformed header")
	}
}

func TestRead_TruncatedTrials(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	if err := Write(&buf, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-10]
	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Error("expected error for truncated export")
	}
}
