// Package strain reads and writes strain time-series channels and
// applies hardware-injection overlays onto them.
package strain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/coinc.report/internal/fsutil"
)

// Series is one named strain channel: uniformly sampled values starting
// at a GPS time.
type Series struct {
	Name       string
	StartTime  float64 // GPS seconds of the first sample
	SampleRate float64 // samples per second
	Samples    []float64
}

// EndTime returns the GPS time just past the last sample.
func (s Series) EndTime() float64 {
	return s.StartTime + float64(len(s.Samples))/s.SampleRate
}

// Overlay adds an injection onto a strain series and returns the result
// as a new channel named outName. The injection lands at the sample
// offset implied by its start time, shifted one sample late to match
// the search pipeline's padding convention. The input series is not
// modified.
func Overlay(st Series, injection []float64, injectStart float64, outName string) (Series, error) {
	if st.SampleRate <= 0 {
		return Series{}, fmt.Errorf("channel %s has invalid sample rate %g", st.Name, st.SampleRate)
	}
	if len(injection) == 0 {
		return Series{}, fmt.Errorf("injection holds no samples")
	}

	delta := (injectStart - st.StartTime) * st.SampleRate
	if delta < 0 {
		return Series{}, fmt.Errorf("injection starts %g samples before channel %s", -delta, st.Name)
	}
	begin := int(delta) + 1
	if begin+len(injection) > len(st.Samples) {
		return Series{}, fmt.Errorf("injection overruns channel %s: %d samples from offset %d exceed %d available",
			st.Name, len(injection), begin, len(st.Samples))
	}

	out := Series{
		Name:       outName,
		StartTime:  st.StartTime,
		SampleRate: st.SampleRate,
		Samples:    append([]float64(nil), st.Samples...),
	}
	for i, v := range injection {
		out.Samples[begin+i] += v
	}
	return out, nil
}

// LoadInjection reads a flat text file holding one sample value per
// line. Blank lines and #-comments are skipped.
func LoadInjection(fs fsutil.FileSystem, path string) ([]float64, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read injection file: %w", err)
	}

	var samples []float64
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse injection sample on line %d: %w", i+1, err)
		}
		samples = append(samples, v)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("injection file %s holds no samples", path)
	}
	return samples, nil
}
