// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/audxcode/utils"
)

// ResamplerConfig describes the input and output side of a Resampler.
type ResamplerConfig struct {
	InRate      int
	InChannels  int
	InFormat    SampleFormat
	OutRate     int
	OutChannels int
	OutFormat   SampleFormat
}

// Resampler converts blocks of samples between sample rates, channel counts
// and sample formats using cubic interpolation. It is push based: every
// Convert call consumes all input it is given and emits whatever output is
// already determined; the last few input samples are held back as
// interpolation context until more input arrives or Flush is called.
//
// Output sample k sits at source position k*InRate/OutRate, computed in
// integer arithmetic so long streams do not drift.
type Resampler struct {
	cfg   ResamplerConfig
	mixer *ChannelMixer

	in    [][]float32 // decoded input, per input channel
	mixed [][]float32 // input after channel mapping, per output channel
	out   [][]float32 // interpolated output, per output channel

	// pending holds unconsumed samples per output channel; pending[c][0] is
	// source sample number base.
	pending  [][]float32
	base     int64
	consumed int64
	produced int64

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState []float32
	useFilter   bool
	filterAlpha float32
	primed      bool
}

func NewResampler(cfg ResamplerConfig) (*Resampler, error) {
	if cfg.InRate <= 0 || cfg.OutRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d -> %d", ErrOutOfRange, cfg.InRate, cfg.OutRate)
	}
	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 {
		return nil, fmt.Errorf("%w: channels %d -> %d", ErrOutOfRange, cfg.InChannels, cfg.OutChannels)
	}
	if cfg.InFormat.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.InFormat)
	}
	if cfg.OutFormat.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.OutFormat)
	}

	r := &Resampler{
		cfg:         cfg,
		mixer:       NewChannelMixer(cfg.InChannels, cfg.OutChannels),
		out:         make([][]float32, cfg.OutChannels),
		pending:     make([][]float32, cfg.OutChannels),
		filterState: make([]float32, cfg.OutChannels),
	}

	// Enable simple low-pass filter when downsampling
	if cfg.InRate > cfg.OutRate {
		r.useFilter = true
		r.filterAlpha = 0.5
	}

	return r, nil
}

func (r *Resampler) Config() ResamplerConfig { return r.cfg }

func (r *Resampler) passthrough() bool { return r.cfg.InRate == r.cfg.OutRate }

// MaxOutput returns an upper bound on the samples per channel a Convert call
// with n input samples can produce.
func (r *Resampler) MaxOutput(n int) int {
	return int(utils.Rescale(int64(n), int64(r.cfg.OutRate), int64(r.cfg.InRate), true))
}

// Pending returns how many samples per channel Flush would emit.
func (r *Resampler) Pending() int {
	if r.passthrough() {
		return 0
	}
	return int(r.total() - r.produced)
}

// total is the number of output samples the input seen so far maps to.
func (r *Resampler) total() int64 {
	return utils.Rescale(r.consumed, int64(r.cfg.OutRate), int64(r.cfg.InRate), true)
}

// Convert consumes n samples per channel from in and writes the output into
// out, laid out as the configured output format. It returns the number of
// samples per channel written, which never exceeds MaxOutput(n).
func (r *Resampler) Convert(in [][]byte, n int, out [][]byte) (int, error) {
	if n == 0 {
		return 0, nil
	}

	r.in = growFloats(r.in, r.cfg.InChannels, n)
	r.mixed = growFloats(r.mixed, r.cfg.OutChannels, n)

	if err := DecodeSamples(r.cfg.InFormat, r.cfg.InChannels, in, n, r.in); err != nil {
		return 0, err
	}
	r.mixer.Mix(r.mixed, r.in, n)
	r.consumed += int64(n)

	if r.passthrough() {
		if err := EncodeSamples(r.cfg.OutFormat, r.cfg.OutChannels, r.mixed, n, out); err != nil {
			return 0, err
		}
		r.produced += int64(n)
		return n, nil
	}

	if r.useFilter {
		r.lowPass(n)
	}
	for c := range r.pending {
		r.pending[c] = append(r.pending[c], r.mixed[c][:n]...)
	}

	return r.emit(out, false)
}

// Flush emits the output still held back as interpolation context. Edge
// samples are repeated past the end of the input.
func (r *Resampler) Flush(out [][]byte) (int, error) {
	if r.passthrough() || r.Pending() == 0 {
		return 0, nil
	}
	return r.emit(out, true)
}

// lowPass applies y[n] = alpha * x[n] + (1-alpha) * y[n-1] to the mixed block.
func (r *Resampler) lowPass(n int) {
	if !r.primed {
		// Initialize filter state with first sample to avoid warm-up transients
		for c := range r.filterState {
			r.filterState[c] = r.mixed[c][0]
		}
		r.primed = true
	}

	for c, samples := range r.mixed {
		state := r.filterState[c]
		for i := range samples[:n] {
			state = r.filterAlpha*samples[i] + (1-r.filterAlpha)*state
			samples[i] = state
		}
		r.filterState[c] = state
	}
}

func (r *Resampler) emit(dst [][]byte, final bool) (int, error) {
	inRate, outRate := int64(r.cfg.InRate), int64(r.cfg.OutRate)
	end := r.base + int64(len(r.pending[0]))
	limit := r.total()

	count := 0
	for {
		k := r.produced + int64(count)
		pos := k * inRate
		i := pos / outRate
		if k >= limit || (!final && i+2 >= end) {
			break
		}
		x := float32(pos%outRate) / float32(outRate)

		for c := range r.pending {
			if count == len(r.out[c]) {
				r.out[c] = append(r.out[c], 0)
			}
			r.out[c][count] = utils.CubicInterpolate(
				r.at(c, i-1), r.at(c, i), r.at(c, i+1), r.at(c, i+2), x)
		}
		count++
	}

	if count > 0 {
		if err := EncodeSamples(r.cfg.OutFormat, r.cfg.OutChannels, r.out, count, dst); err != nil {
			return 0, err
		}
	}
	r.produced += int64(count)
	r.trim()

	return count, nil
}

// at returns source sample j of channel c, repeating the edge samples for
// positions outside the pending window.
func (r *Resampler) at(c int, j int64) float32 {
	p := r.pending[c]
	idx := j - r.base
	if idx < 0 {
		idx = 0
	} else if idx >= int64(len(p)) {
		idx = int64(len(p)) - 1
	}
	return p[idx]
}

// trim drops pending samples that no future output can reference.
func (r *Resampler) trim() {
	next := r.produced * int64(r.cfg.InRate) / int64(r.cfg.OutRate)
	drop := next - 1 - r.base
	if drop <= 0 {
		return
	}
	if drop > int64(len(r.pending[0])) {
		drop = int64(len(r.pending[0]))
	}
	for c, p := range r.pending {
		r.pending[c] = p[:copy(p, p[drop:])]
	}
	r.base += drop
}
