// Package result defines the records returned by the ITM entry points and
// the projection of raw engine outputs into them.
//
// Every record is a value: it owns all of its fields, is never mutated after
// projection, and shares no storage with the engine outputs it was built
// from.
package result

import (
	"fmt"

	"github.com/wippyai/itm-bind/itm"
)

// Mode identifies the propagation regime that produced a result.
type Mode int32

const (
	ModeNotSet       Mode = itm.ModeNotSet
	ModeLineOfSight  Mode = itm.ModeLineOfSight
	ModeDiffraction  Mode = itm.ModeDiffraction
	ModeTroposcatter Mode = itm.ModeTroposcatter
)

func (m Mode) String() string {
	switch m {
	case ModeNotSet:
		return "not set"
	case ModeLineOfSight:
		return "line of sight"
	case ModeDiffraction:
		return "diffraction"
	case ModeTroposcatter:
		return "troposcatter"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Pair holds a per-terminal quantity: index 0 is the transmitter, index 1
// the receiver.
type Pair [2]float64

// Tx returns the transmitter value.
func (p Pair) Tx() float64 { return p[0] }

// Rx returns the receiver value.
func (p Pair) Rx() float64 { return p[1] }

// Compact is the result of a non-extended entry point.
type Compact struct {
	Status        int     `itm:"status" json:"status"`
	Warnings      int32   `itm:"warnings" json:"warnings"`
	AttenuationDB float64 `itm:"A_db" json:"A_db"`
}

// OK reports whether the engine produced a usable attenuation.
func (c Compact) OK() bool {
	return c.Status == itm.Success || c.Status == itm.SuccessWithWarnings
}

// Extended is the result of an extended entry point.
type Extended struct {
	Compact

	HorizonAngle           Pair    `json:"theta_hzn"`
	HorizonDistance        Pair    `json:"d_hzn__meter"`
	EffectiveHeight        Pair    `json:"h_e__meter"`
	SurfaceRefractivity    float64 `json:"N_s"`
	TerrainIrregularity    float64 `json:"delta_h__meter"`
	ReferenceAttenuationDB float64 `json:"A_ref__db"`
	FreeSpaceAttenuationDB float64 `json:"A_fs__db"`
	PathLengthKm           float64 `json:"d__km"`
	Mode                   Mode    `json:"mode"`
}

// FlatExtended is the suffixed-field view of Extended for hosts whose
// records cannot nest sequences.
type FlatExtended struct {
	Status                 int     `itm:"status" json:"status"`
	Warnings               int32   `itm:"warnings" json:"warnings"`
	AttenuationDB          float64 `itm:"A_db" json:"A_db"`
	HorizonAngle0          float64 `itm:"theta_hzn_0" json:"theta_hzn_0"`
	HorizonAngle1          float64 `itm:"theta_hzn_1" json:"theta_hzn_1"`
	HorizonDistance0       float64 `itm:"d_hzn__meter_0" json:"d_hzn__meter_0"`
	HorizonDistance1       float64 `itm:"d_hzn__meter_1" json:"d_hzn__meter_1"`
	EffectiveHeight0       float64 `itm:"h_e__meter_0" json:"h_e__meter_0"`
	EffectiveHeight1       float64 `itm:"h_e__meter_1" json:"h_e__meter_1"`
	SurfaceRefractivity    float64 `itm:"N_s" json:"N_s"`
	TerrainIrregularity    float64 `itm:"delta_h__meter" json:"delta_h__meter"`
	ReferenceAttenuationDB float64 `itm:"A_ref__db" json:"A_ref__db"`
	FreeSpaceAttenuationDB float64 `itm:"A_fs__db" json:"A_fs__db"`
	PathLengthKm           float64 `itm:"d__km" json:"d__km"`
	Mode                   int32   `itm:"mode" json:"mode"`
}

// Project builds a Compact result. Warnings are truncated to 32 bits.
func Project(status int, aDB float64, warnings int64) Compact {
	return Compact{
		Status:        status,
		Warnings:      int32(warnings),
		AttenuationDB: aDB,
	}
}

// ProjectExtended builds an Extended result, copying every diagnostic out
// of iv.
func ProjectExtended(status int, aDB float64, warnings int64, iv itm.IntermediateValues) Extended {
	return Extended{
		Compact:                Project(status, aDB, warnings),
		HorizonAngle:           Pair(iv.ThetaHzn),
		HorizonDistance:        Pair(iv.DHznMeter),
		EffectiveHeight:        Pair(iv.HEMeter),
		SurfaceRefractivity:    iv.NS,
		TerrainIrregularity:    iv.DeltaHMeter,
		ReferenceAttenuationDB: iv.ARefDB,
		FreeSpaceAttenuationDB: iv.AFsDB,
		PathLengthKm:           iv.DKm,
		Mode:                   Mode(iv.Mode),
	}
}

// Flat returns the suffixed-field view of e.
func (e Extended) Flat() FlatExtended {
	return FlatExtended{
		Status:                 e.Status,
		Warnings:               e.Warnings,
		AttenuationDB:          e.AttenuationDB,
		HorizonAngle0:          e.HorizonAngle[0],
		HorizonAngle1:          e.HorizonAngle[1],
		HorizonDistance0:       e.HorizonDistance[0],
		HorizonDistance1:       e.HorizonDistance[1],
		EffectiveHeight0:       e.EffectiveHeight[0],
		EffectiveHeight1:       e.EffectiveHeight[1],
		SurfaceRefractivity:    e.SurfaceRefractivity,
		TerrainIrregularity:    e.TerrainIrregularity,
		ReferenceAttenuationDB: e.ReferenceAttenuationDB,
		FreeSpaceAttenuationDB: e.FreeSpaceAttenuationDB,
		PathLengthKm:           e.PathLengthKm,
		Mode:                   int32(e.Mode),
	}
}
