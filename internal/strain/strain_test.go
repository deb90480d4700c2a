package strain

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/coinc.report/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroSeries(n int) Series {
	return Series{
		Name:       "H1:STRAIN",
		StartTime:  1000000000.0,
		SampleRate: 2.0,
		Samples:    make([]float64, n),
	}
}

func TestOverlayAddsAtOffsetPlusOne(t *testing.T) {
	st := zeroSeries(10)

	out, err := Overlay(st, []float64{1, 2, 3}, 1000000001.0, "H1:STRAIN_HWINJ")
	require.NoError(t, err)

	// delta = 1 s * 2 Hz = 2 samples, landing one sample later.
	want := []float64{0, 0, 0, 1, 2, 3, 0, 0, 0, 0}
	assert.Equal(t, want, out.Samples)
	assert.Equal(t, "H1:STRAIN_HWINJ", out.Name)
	assert.Equal(t, st.StartTime, out.StartTime)
	assert.Equal(t, st.SampleRate, out.SampleRate)

	// Input series untouched.
	assert.Equal(t, make([]float64, 10), st.Samples)
}

func TestOverlayAccumulates(t *testing.T) {
	st := zeroSeries(6)
	for i := range st.Samples {
		st.Samples[i] = 10
	}

	out, err := Overlay(st, []float64{0.5, -0.5}, st.StartTime, "sum")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10.5, 9.5, 10, 10, 10}, out.Samples)
}

func TestOverlayExactFit(t *testing.T) {
	st := zeroSeries(5)

	// begin = 1, injection of 4 samples fills through index 4.
	out, err := Overlay(st, []float64{1, 1, 1, 1}, st.StartTime, "fit")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 1, 1}, out.Samples)
}

func TestOverlayNegativeOffset(t *testing.T) {
	st := zeroSeries(10)

	_, err := Overlay(st, []float64{1}, st.StartTime-0.25, "early")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before channel")
}

func TestOverlayOverrun(t *testing.T) {
	st := zeroSeries(10)

	_, err := Overlay(st, make([]float64, 10), st.StartTime, "long")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overruns")
}

func TestOverlayEmptyInjection(t *testing.T) {
	_, err := Overlay(zeroSeries(4), nil, 1000000000.0, "empty")
	require.Error(t, err)
}

func TestOverlayBadSampleRate(t *testing.T) {
	st := zeroSeries(4)
	st.SampleRate = 0

	_, err := Overlay(st, []float64{1}, st.StartTime, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample rate")
}

func TestLoadInjection(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("inj.txt", []byte("1.0\n2.5\n# comment\n\n-3.0\n"), 0644))

	samples, err := LoadInjection(fs, "inj.txt")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.5, -3.0}, samples)
}

func TestLoadInjectionBadValue(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("inj.txt", []byte("1.0\nnot-a-number\n"), 0644))

	_, err := LoadInjection(fs, "inj.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadInjectionEmpty(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("inj.txt", []byte("# nothing here\n"), 0644))

	_, err := LoadInjection(fs, "inj.txt")
	require.Error(t, err)
}

func TestLoadInjectionMissingFile(t *testing.T) {
	_, err := LoadInjection(fsutil.NewMemoryFileSystem(), "absent.txt")
	require.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strain.sqlite")

	created, err := Create(path)
	require.NoError(t, err)
	in := Series{
		Name:       "L1:STRAIN",
		StartTime:  1126259460.0,
		SampleRate: 4096.0,
		Samples:    []float64{0.25, -0.5, 1.75, 0},
	}
	require.NoError(t, created.WriteChannel(in))
	require.NoError(t, created.Close())

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Channel("L1:STRAIN")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	names, err := st.Channels()
	require.NoError(t, err)
	assert.Equal(t, []string{"L1:STRAIN"}, names)
}

func TestChannelMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strain.sqlite")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Channel("H1:ABSENT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sqlite"))
	require.Error(t, err)
}

func TestChannelBadBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strain.sqlite")
	st, err := Create(path)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Exec(
		`INSERT INTO channels (name, start_time, sample_rate, samples) VALUES (?, ?, ?, ?)`,
		"H1:BAD", 0.0, 1.0, []byte{1, 2, 3})
	require.NoError(t, err)

	_, err = st.Channel("H1:BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple of 8")
}
