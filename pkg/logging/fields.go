package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Pipeline field helpers

// Stage names the pipeline stage producing the log line (fit, cost_model,
// simulate, analyze).
func Stage(name string) Field {
	return String("stage", name)
}

// Trials records the trial count of a run
func Trials(n int) Field {
	return Int("trials", n)
}

// Seed records the random seed of a run
func Seed(seed int64) Field {
	return Int64("seed", seed)
}

// Threshold records the loss threshold under analysis
func Threshold(v float64) Field {
	return Float64("threshold", v)
}

// Risk records a computed loss-exceedance probability
func Risk(v float64) Field {
	return Float64("risk", v)
}

// RunID records the identifier of a simulation run
func RunID(id string) Field {
	return String("run_id", id)
}

// Pairing records the (size, industry) pairing a distribution belongs to
func Pairing(size, industry string) Field {
	return String("pairing", size+"/"+industry)
}
