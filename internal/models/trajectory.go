package models

import "encoding/json"

// Sample is the state of the system at one output time.
type Sample struct {
	Time     float64            `json:"t"`
	State    CompartmentState   `json:"state"`
	Warnings []NumericalWarning `json:"warnings,omitempty"`
}

// IntegrationStats describes the work the integrator performed.
type IntegrationStats struct {
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	Clamped     int     `json:"clamped"`
	MaxDrift    float64 `json:"max_drift"`
}

// TrajectoryInfo carries everything about a trajectory except its samples.
type TrajectoryInfo struct {
	Population float64          `json:"population"`
	Rates      *EffectiveRates  `json:"rates,omitempty"`
	Method     string           `json:"method,omitempty"`
	StepSize   float64          `json:"step_size"`
	Horizon    float64          `json:"horizon"`
	Stats      IntegrationStats `json:"stats"`
}

// Trajectory is the ordered, read-only sequence of samples produced by one
// simulation run.
type Trajectory struct {
	info    TrajectoryInfo
	samples []Sample
}

// NewTrajectory takes ownership of samples; callers must not modify the
// slice afterwards.
func NewTrajectory(info TrajectoryInfo, samples []Sample) *Trajectory {
	return &Trajectory{info: info, samples: samples}
}

// Info returns the trajectory metadata.
func (t *Trajectory) Info() TrajectoryInfo {
	return t.info
}

// Len returns the number of samples.
func (t *Trajectory) Len() int {
	return len(t.samples)
}

// At returns the i-th sample.
func (t *Trajectory) At(i int) Sample {
	return t.samples[i]
}

// Samples returns a copy of all samples.
func (t *Trajectory) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Initial returns the first sample.
func (t *Trajectory) Initial() Sample {
	return t.samples[0]
}

// Final returns the last sample.
func (t *Trajectory) Final() Sample {
	return t.samples[len(t.samples)-1]
}

// Times returns the sample times.
func (t *Trajectory) Times() []float64 {
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.Time
	}
	return out
}

// Series returns the values of one compartment across all samples.
func (t *Trajectory) Series(c Compartment) []float64 {
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.State.Get(c)
	}
	return out
}

// Warnings collects the warnings of every sample in time order.
func (t *Trajectory) Warnings() []NumericalWarning {
	var out []NumericalWarning
	for _, s := range t.samples {
		out = append(out, s.Warnings...)
	}
	return out
}

type trajectoryJSON struct {
	TrajectoryInfo
	Samples []Sample `json:"samples"`
}

func (t *Trajectory) MarshalJSON() ([]byte, error) {
	return json.Marshal(trajectoryJSON{TrajectoryInfo: t.info, Samples: t.samples})
}

func (t *Trajectory) UnmarshalJSON(data []byte) error {
	var v trajectoryJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.info = v.TrajectoryInfo
	t.samples = v.Samples
	return nil
}
