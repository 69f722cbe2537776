package result

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/wippyai/itm-bind/itm"
)

func sampleDiagnostics() itm.IntermediateValues {
	return itm.IntermediateValues{
		ThetaHzn:    [2]float64{-0.0015, 0.002},
		DHznMeter:   [2]float64{13036, 9000},
		HEMeter:     [2]float64{10, 12},
		NS:          301,
		DeltaHMeter: 90,
		ARefDB:      26.5,
		AFsDB:       91.5,
		DKm:         9,
		Mode:        itm.ModeDiffraction,
	}
}

func TestProjectTruncatesWarnings(t *testing.T) {
	tests := []struct {
		name     string
		warnings int64
		want     int32
	}{
		{"zero", 0, 0},
		{"low bits", 0x4001, 0x4001},
		{"high bits dropped", 1<<40 | 0x2, 0x2},
		{"sign bit kept", 0x80000000, math.MinInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Project(1, 100.5, tt.warnings)
			if c.Warnings != tt.want {
				t.Errorf("Warnings = %#x, want %#x", c.Warnings, tt.want)
			}
			if c.Status != 1 || c.AttenuationDB != 100.5 {
				t.Errorf("Project changed status or attenuation: %+v", c)
			}
		})
	}
}

func TestProjectExtendedCopiesFields(t *testing.T) {
	iv := sampleDiagnostics()
	e := ProjectExtended(0, 118.1, 0, iv)

	if e.HorizonAngle.Tx() != iv.ThetaHzn[0] || e.HorizonAngle.Rx() != iv.ThetaHzn[1] {
		t.Errorf("HorizonAngle = %v", e.HorizonAngle)
	}
	if e.HorizonDistance != Pair(iv.DHznMeter) || e.EffectiveHeight != Pair(iv.HEMeter) {
		t.Errorf("pairs = %v %v", e.HorizonDistance, e.EffectiveHeight)
	}
	if e.SurfaceRefractivity != iv.NS || e.TerrainIrregularity != iv.DeltaHMeter ||
		e.ReferenceAttenuationDB != iv.ARefDB || e.FreeSpaceAttenuationDB != iv.AFsDB ||
		e.PathLengthKm != iv.DKm {
		t.Errorf("scalars not copied verbatim: %+v", e)
	}
	if e.Mode != ModeDiffraction {
		t.Errorf("Mode = %v", e.Mode)
	}

	// the projection owns its values
	iv.HEMeter[0] = -1
	if e.EffectiveHeight[0] != 10 {
		t.Errorf("projection aliases diagnostics: %v", e.EffectiveHeight)
	}
}

func TestFlatView(t *testing.T) {
	e := ProjectExtended(1, 118.1, 0x80, sampleDiagnostics())
	f := e.Flat()

	if f.Status != 1 || f.Warnings != 0x80 || f.AttenuationDB != 118.1 {
		t.Errorf("compact fields = %+v", f)
	}
	if f.HorizonAngle0 != -0.0015 || f.HorizonAngle1 != 0.002 ||
		f.HorizonDistance0 != 13036 || f.HorizonDistance1 != 9000 ||
		f.EffectiveHeight0 != 10 || f.EffectiveHeight1 != 12 {
		t.Errorf("paired fields = %+v", f)
	}
	if f.Mode != int32(ModeDiffraction) {
		t.Errorf("Mode = %d", f.Mode)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"status", "warnings", "A_db", "theta_hzn_0", "theta_hzn_1",
		"d_hzn__meter_0", "d_hzn__meter_1", "h_e__meter_0", "h_e__meter_1",
		"N_s", "delta_h__meter", "A_ref__db", "A_fs__db", "d__km", "mode",
	} {
		if _, ok := fields[name]; !ok {
			t.Errorf("flat JSON missing %q", name)
		}
	}
	if len(fields) != 15 {
		t.Errorf("flat JSON has %d fields, want 15", len(fields))
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNotSet, "not set"},
		{ModeLineOfSight, "line of sight"},
		{ModeDiffraction, "diffraction"},
		{ModeTroposcatter, "troposcatter"},
		{Mode(9), "mode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int32(tt.mode), got, tt.want)
		}
	}
}

func TestCompactOK(t *testing.T) {
	for status, want := range map[int]bool{0: true, 1: true, 1000: false, 1023: false} {
		if got := (Compact{Status: status}).OK(); got != want {
			t.Errorf("Compact{Status: %d}.OK() = %v", status, got)
		}
	}
}
