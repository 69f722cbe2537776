package itm

// Status codes returned by every entry point.
const (
	Success             = 0
	SuccessWithWarnings = 1

	ErrorTxTerminalHeight         = 1000
	ErrorRxTerminalHeight         = 1001
	ErrorInvalidRadioClimate      = 1002
	ErrorInvalidTime              = 1003
	ErrorInvalidLocation          = 1004
	ErrorInvalidSituation         = 1005
	ErrorInvalidConfidence        = 1006
	ErrorInvalidReliability       = 1007
	ErrorRefractivity             = 1008
	ErrorFrequency                = 1009
	ErrorPolarization             = 1010
	ErrorEpsilon                  = 1011
	ErrorSigma                    = 1012
	ErrorGroundImpedance          = 1013
	ErrorMDVar                    = 1014
	ErrorEffectiveEarth           = 1016
	ErrorPathDistance             = 1017
	ErrorDeltaH                   = 1018
	ErrorTxSitingCriteria         = 1019
	ErrorRxSitingCriteria         = 1020
	ErrorSurfaceRefractivitySmall = 1021
	ErrorSurfaceRefractivityLarge = 1022
	ErrorTerrainProfile           = 1023
)

// Warning flags accumulated into the warnings output.
const (
	WarnTxTerminalHeight      int64 = 0x0001
	WarnRxTerminalHeight      int64 = 0x0002
	WarnFrequency             int64 = 0x0004
	WarnPathDistanceTooBig1   int64 = 0x0008
	WarnPathDistanceTooBig2   int64 = 0x0010
	WarnPathDistanceTooSmall1 int64 = 0x0020
	WarnPathDistanceTooSmall2 int64 = 0x0040
	WarnTxHorizonAngle        int64 = 0x0080
	WarnRxHorizonAngle        int64 = 0x0100
	WarnTxHorizonDistance1    int64 = 0x0200
	WarnRxHorizonDistance1    int64 = 0x0400
	WarnTxHorizonDistance2    int64 = 0x0800
	WarnRxHorizonDistance2    int64 = 0x1000
	WarnExtremeVariabilities  int64 = 0x2000
	WarnSurfaceRefractivity   int64 = 0x4000
)

// Radio climates.
const (
	ClimateEquatorial                = 1
	ClimateContinentalSubtropical    = 2
	ClimateMaritimeSubtropical       = 3
	ClimateDesert                    = 4
	ClimateContinentalTemperate      = 5
	ClimateMaritimeTemperateOverLand = 6
	ClimateMaritimeTemperateOverSea  = 7
)

// Polarizations.
const (
	PolarizationHorizontal = 0
	PolarizationVertical   = 1
)

// Siting criteria for area predictions.
const (
	SitingRandom      = 0
	SitingCareful     = 1
	SitingVeryCareful = 2
)

// Variability modes. Add MDVarEliminateLocation and/or
// MDVarEliminateSituation to drop those components.
const (
	MDVarSingleMessage = 0
	MDVarAccidental    = 1
	MDVarMobile        = 2
	MDVarBroadcast     = 3

	MDVarEliminateLocation  = 10
	MDVarEliminateSituation = 20
)

// Propagation modes reported in IntermediateValues.Mode.
const (
	ModeNotSet       = 0
	ModeLineOfSight  = 1
	ModeDiffraction  = 2
	ModeTroposcatter = 3
)

// IntermediateValues holds the diagnostic quantities of one prediction.
// Paired values are indexed 0 for the transmitter and 1 for the receiver.
type IntermediateValues struct {
	ThetaHzn    [2]float64 // horizon elevation angles, radians
	DHznMeter   [2]float64 // horizon distances, meters
	HEMeter     [2]float64 // effective heights, meters
	NS          float64    // surface refractivity, N-units
	DeltaHMeter float64    // terrain irregularity, meters
	ARefDB      float64    // reference attenuation, dB
	AFsDB       float64    // free space basic transmission loss, dB
	DKm         float64    // path distance, km
	Mode        int
}

func statusOf(warnings int64) int {
	if warnings != 0 {
		return SuccessWithWarnings
	}
	return Success
}
