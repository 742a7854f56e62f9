// SPDX-License-Identifier: EPL-2.0

package audio

import "testing"

func TestSampleFormat_Properties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  SampleFormat
		name    string
		bps     int
		planar  bool
		packed  SampleFormat
		planarF SampleFormat
	}{
		{FormatU8, "u8", 1, false, FormatU8, FormatU8P},
		{FormatS16, "s16", 2, false, FormatS16, FormatS16P},
		{FormatS32P, "s32p", 4, true, FormatS32, FormatS32P},
		{FormatF32P, "fltp", 4, true, FormatF32, FormatF32P},
		{FormatF64, "dbl", 8, false, FormatF64, FormatF64P},
		{FormatNone, "none", 0, false, FormatNone, FormatNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.format.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.format.BytesPerSample(); got != tt.bps {
				t.Errorf("BytesPerSample() = %d, want %d", got, tt.bps)
			}
			if got := tt.format.IsPlanar(); got != tt.planar {
				t.Errorf("IsPlanar() = %v, want %v", got, tt.planar)
			}
			if got := tt.format.Packed(); got != tt.packed {
				t.Errorf("Packed() = %s, want %s", got, tt.packed)
			}
			if got := tt.format.Planar(); got != tt.planarF {
				t.Errorf("Planar() = %s, want %s", got, tt.planarF)
			}
		})
	}
}

func TestSampleFormat_Geometry(t *testing.T) {
	t.Parallel()

	if got := FormatS16.Planes(6); got != 1 {
		t.Errorf("FormatS16.Planes(6) = %d, want 1", got)
	}
	if got := FormatS16P.Planes(6); got != 6 {
		t.Errorf("FormatS16P.Planes(6) = %d, want 6", got)
	}
	if got := FormatS16.RowStride(2); got != 4 {
		t.Errorf("FormatS16.RowStride(2) = %d, want 4", got)
	}
	if got := FormatF32P.RowStride(2); got != 4 {
		t.Errorf("FormatF32P.RowStride(2) = %d, want 4", got)
	}
}

func TestParseSampleFormat(t *testing.T) {
	t.Parallel()

	for f := FormatU8; f <= FormatF64P; f++ {
		got, ok := ParseSampleFormat(f.String())
		if !ok || got != f {
			t.Errorf("ParseSampleFormat(%q) = %s, %v", f.String(), got, ok)
		}
	}
	if _, ok := ParseSampleFormat("none"); ok {
		t.Error(`ParseSampleFormat("none") succeeded`)
	}
	if _, ok := ParseSampleFormat("s24"); ok {
		t.Error(`ParseSampleFormat("s24") succeeded`)
	}
}

func TestChannelLayout(t *testing.T) {
	t.Parallel()

	for channels := 1; channels <= 8; channels++ {
		l := DefaultLayout(channels)
		if l == LayoutUnspecified {
			t.Fatalf("DefaultLayout(%d) is unspecified", channels)
		}
		if got := l.Channels(); got != channels {
			t.Errorf("DefaultLayout(%d).Channels() = %d", channels, got)
		}
	}

	if DefaultLayout(0) != LayoutUnspecified || DefaultLayout(9) != LayoutUnspecified {
		t.Error("DefaultLayout() defined a layout for an unsupported count")
	}
}
