package dispatch

import (
	"context"
	stderrors "errors"
	"math"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/itm"
	"github.com/wippyai/itm-bind/result"
)

func flatLink() PointToPoint {
	pfl := make([]float64, 12)
	pfl[0] = 9
	pfl[1] = 1000
	return PointToPoint{
		Link: Link{
			TxHeight:     10,
			RxHeight:     10,
			Climate:      itm.ClimateContinentalTemperate,
			N0:           301,
			FrequencyMHz: 100,
			Polarization: itm.PolarizationVertical,
			Epsilon:      15,
			Sigma:        0.005,
			MDVar:        itm.MDVarSingleMessage,
		},
		Profile: pfl,
	}
}

func randomArea() Area {
	return Area{
		Link: Link{
			TxHeight:     10,
			RxHeight:     10,
			Climate:      itm.ClimateContinentalTemperate,
			N0:           301,
			FrequencyMHz: 100,
			Polarization: itm.PolarizationVertical,
			Epsilon:      15,
			Sigma:        0.005,
			MDVar:        itm.MDVarBroadcast,
		},
		TxSiteCriteria: itm.SitingRandom,
		RxSiteCriteria: itm.SitingRandom,
		DistanceKm:     10,
		DeltaH:         90,
	}
}

var median = TLS{Time: 50, Location: 50, Situation: 50}

func TestNative_AllOperationsSucceed(t *testing.T) {
	d := New(Native{})
	ctx := context.Background()
	p2p := flatLink()
	area := randomArea()
	cr := CR{Confidence: 50, Reliability: 50}

	compact := map[string]func() (result.Compact, error){
		OpP2PTLS:  func() (result.Compact, error) { return d.P2PTLS(ctx, p2p, median) },
		OpP2PCR:   func() (result.Compact, error) { return d.P2PCR(ctx, p2p, cr) },
		OpAreaTLS: func() (result.Compact, error) { return d.AreaTLS(ctx, area, median) },
		OpAreaCR:  func() (result.Compact, error) { return d.AreaCR(ctx, area, cr) },
	}
	for op, call := range compact {
		t.Run(op, func(t *testing.T) {
			got, err := call()
			if err != nil {
				t.Fatalf("%s: %v", op, err)
			}
			if got.Status != itm.Success || got.Warnings != 0 {
				t.Errorf("status=%d warnings=%#x, want 0/0", got.Status, got.Warnings)
			}
			if got.AttenuationDB <= 0 {
				t.Errorf("A_db = %v", got.AttenuationDB)
			}
		})
	}

	extended := map[string]func() (result.Extended, error){
		OpP2PTLSEx:  func() (result.Extended, error) { return d.P2PTLSEx(ctx, p2p, median) },
		OpP2PCREx:   func() (result.Extended, error) { return d.P2PCREx(ctx, p2p, cr) },
		OpAreaTLSEx: func() (result.Extended, error) { return d.AreaTLSEx(ctx, area, median) },
		OpAreaCREx:  func() (result.Extended, error) { return d.AreaCREx(ctx, area, cr) },
	}
	for op, call := range extended {
		t.Run(op, func(t *testing.T) {
			got, err := call()
			if err != nil {
				t.Fatalf("%s: %v", op, err)
			}
			if got.Status != itm.Success || got.Warnings != 0 {
				t.Errorf("status=%d warnings=%#x, want 0/0", got.Status, got.Warnings)
			}
			if got.Mode == result.ModeNotSet {
				t.Error("mode not set")
			}
		})
	}
}

func TestCompactMatchesExtended(t *testing.T) {
	d := New(Native{})
	ctx := context.Background()

	compact, err := d.P2PTLS(ctx, flatLink(), median)
	if err != nil {
		t.Fatal(err)
	}
	ext, err := d.P2PTLSEx(ctx, flatLink(), median)
	if err != nil {
		t.Fatal(err)
	}
	if compact != ext.Compact {
		t.Errorf("compact %+v != extended %+v", compact, ext.Compact)
	}

	areaCompact, _ := d.AreaCR(ctx, randomArea(), CR{Confidence: 90, Reliability: 10})
	areaExt, _ := d.AreaCREx(ctx, randomArea(), CR{Confidence: 90, Reliability: 10})
	if areaCompact != areaExt.Compact {
		t.Errorf("area compact %+v != extended %+v", areaCompact, areaExt.Compact)
	}
}

func TestFlatScenarioNearFreeSpace(t *testing.T) {
	ext, err := New(Native{}).P2PTLSEx(context.Background(), flatLink(), median)
	if err != nil {
		t.Fatal(err)
	}
	if ext.PathLengthKm != 9 {
		t.Fatalf("d__km = %v", ext.PathLengthKm)
	}
	fs := itm.FreeSpaceLoss(9000, 100)
	if math.Abs(ext.FreeSpaceAttenuationDB-fs) > 1e-9 {
		t.Errorf("A_fs = %v, want %v", ext.FreeSpaceAttenuationDB, fs)
	}
	if math.Abs(ext.AttenuationDB-118.1759) > 0.01 {
		t.Errorf("A_db = %.4f, want 118.1759", ext.AttenuationDB)
	}
	if ext.Mode != itm.ModeLineOfSight || ext.Status != itm.Success || ext.Warnings != 0 {
		t.Errorf("mode = %v status = %d warnings = %#x", ext.Mode, ext.Status, ext.Warnings)
	}
}

func TestPairsChangeTogether(t *testing.T) {
	d := New(Native{})
	ctx := context.Background()

	base, _ := d.P2PTLSEx(ctx, flatLink(), median)

	taller := flatLink()
	taller.TxHeight = 30
	moved, _ := d.P2PTLSEx(ctx, taller, median)
	if moved.EffectiveHeight == base.EffectiveHeight {
		t.Error("effective heights unchanged after a height change")
	}
	if moved.EffectiveHeight.Tx() == base.EffectiveHeight.Tx() {
		t.Error("tx effective height unchanged")
	}

	horizontal := flatLink()
	horizontal.Polarization = itm.PolarizationHorizontal
	same, _ := d.P2PTLSEx(ctx, horizontal, median)
	if same.HorizonAngle != base.HorizonAngle ||
		same.HorizonDistance != base.HorizonDistance ||
		same.EffectiveHeight != base.EffectiveHeight {
		t.Error("paired diagnostics changed with polarization")
	}
}

func TestAreaReproducible(t *testing.T) {
	d := New(Native{})
	first, err := d.AreaTLS(context.Background(), randomArea(), median)
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != itm.Success || first.Warnings != 0 || math.Abs(first.AttenuationDB-118.7603) > 0.01 {
		t.Fatalf("got %+v, want status 0 warnings 0 A_db 118.7603", first)
	}
	for range 5 {
		again, _ := d.AreaTLS(context.Background(), randomArea(), median)
		if again != first {
			t.Fatalf("got %+v, want %+v", again, first)
		}
	}
}

func TestEngineStatusPassesThrough(t *testing.T) {
	bad := flatLink()
	bad.FrequencyMHz = 5
	got, err := New(Native{}).P2PTLS(context.Background(), bad, median)
	if err != nil {
		t.Fatalf("status codes are not errors: %v", err)
	}
	if got.Status != itm.ErrorFrequency {
		t.Errorf("status = %d, want %d", got.Status, itm.ErrorFrequency)
	}
}

// recordingEngine checks that outputs arrive zeroed and returns canned values.
type recordingEngine struct {
	Native
	calls  int
	err    error
	status int
	dirty  bool
}

func (e *recordingEngine) P2PTLS(_ context.Context, _ PointToPoint, _ TLS, aDB *float64, w *int64) (int, error) {
	e.calls++
	if *aDB != 0 || *w != 0 {
		e.dirty = true
	}
	*aDB = 123.5
	*w = 0x1_0000_0004
	return e.status, e.err
}

func (e *recordingEngine) AreaCREx(_ context.Context, _ Area, _ CR, aDB *float64, w *int64, iv *itm.IntermediateValues) (int, error) {
	e.calls++
	if *aDB != 0 || *w != 0 || *iv != (itm.IntermediateValues{}) {
		e.dirty = true
	}
	iv.ThetaHzn = [2]float64{0.01, 0.02}
	iv.Mode = itm.ModeDiffraction
	*aDB = 140
	return e.status, e.err
}

func TestDispatcher_ZeroedOutputsAndProjection(t *testing.T) {
	eng := &recordingEngine{status: itm.SuccessWithWarnings}
	d := New(eng)

	for range 2 {
		got, err := d.P2PTLS(context.Background(), flatLink(), median)
		if err != nil {
			t.Fatal(err)
		}
		if got.Warnings != 4 {
			t.Errorf("warnings = %#x, want low 32 bits", got.Warnings)
		}
		if got.AttenuationDB != 123.5 || got.Status != itm.SuccessWithWarnings {
			t.Errorf("got %+v", got)
		}
	}

	ext, err := d.AreaCREx(context.Background(), randomArea(), CR{50, 50})
	if err != nil {
		t.Fatal(err)
	}
	if ext.HorizonAngle != (result.Pair{0.01, 0.02}) || ext.Mode != result.ModeDiffraction {
		t.Errorf("got %+v", ext)
	}

	if eng.calls != 3 {
		t.Errorf("calls = %d, want one engine call per operation", eng.calls)
	}
	if eng.dirty {
		t.Error("engine saw non-zero output slots")
	}
}

func TestDispatcher_EngineErrorIsNotAStatus(t *testing.T) {
	trap := errors.Trap(OpP2PTLS, stderrors.New("unreachable"))
	d := New(&recordingEngine{err: trap})

	got, err := d.P2PTLS(context.Background(), flatLink(), median)
	if !stderrors.Is(err, trap) {
		t.Fatalf("err = %v, want trap", err)
	}
	if got != (result.Compact{}) {
		t.Errorf("partial result returned: %+v", got)
	}
}

func TestDispatcher_NilEngine(t *testing.T) {
	_, err := New(nil).AreaTLS(context.Background(), randomArea(), median)
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindNotInitialized {
		t.Errorf("err = %v", err)
	}
}

type observedCall struct {
	op     string
	status int
	err    error
}

type fakeObserver struct {
	calls []observedCall
}

func (o *fakeObserver) ObserveCall(op string, status int, err error, _ time.Duration) {
	o.calls = append(o.calls, observedCall{op, status, err})
}

func TestDispatcher_Observability(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	core, logs := observer.New(zapcore.DebugLevel)
	obs := &fakeObserver{}

	d := New(Native{}, WithTracerProvider(tp), WithLogger(zap.New(core)), WithObserver(obs))
	if _, err := d.AreaTLSEx(context.Background(), randomArea(), median); err != nil {
		t.Fatal(err)
	}

	if len(obs.calls) != 1 || obs.calls[0].op != OpAreaTLSEx || obs.calls[0].err != nil {
		t.Errorf("observer calls = %+v", obs.calls)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != OpAreaTLSEx {
		t.Errorf("span name = %q", spans[0].Name())
	}
	var sawStatus bool
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "itm.status" {
			sawStatus = true
			if kv.Value.AsInt64() != 0 {
				t.Errorf("itm.status = %d", kv.Value.AsInt64())
			}
		}
	}
	if !sawStatus {
		t.Error("span missing itm.status")
	}

	entries := logs.FilterMessage("engine call").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d", len(entries))
	}
	if entries[0].ContextMap()["op"] != OpAreaTLSEx {
		t.Errorf("log fields = %v", entries[0].ContextMap())
	}
	if id, _ := entries[0].ContextMap()["call_id"].(string); len(id) != 36 {
		t.Errorf("call_id = %q", id)
	}
}
