package trebuchet

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trebsim/internal/dynamo"
	"github.com/san-kum/trebsim/internal/fixed"
	"github.com/san-kum/trebsim/internal/integrators"
)

const tick = 0.001

func newTrebuchet(t *testing.T, p Params) *Trebuchet {
	t.Helper()
	tr, err := New(p, fixed.FromInt(10, 2000), integrators.NewRK4())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestInitialGeometry(t *testing.T) {
	p := DefaultParams()
	tr := newTrebuchet(t, p)

	base := fixed.FromInt(10, 2000)
	if got, want := tr.Pivot(), base.Add(fixed.ToFixed(mgl64.Vec2{0, p.PivotHeight})); got != want {
		t.Errorf("Pivot() = %v, want %v", got, want)
	}

	tip := mgl64.Vec2{math.Cos(p.StartAngle), math.Sin(p.StartAngle)}.Mul(p.LongArm).Add(mgl64.Vec2{0, p.PivotHeight})
	proj := tip.Add(mgl64.Vec2{p.Sling, 0})
	if got, want := tr.ArmSlingPoint(), base.Add(fixed.ToFixed(tip)); got != want {
		t.Errorf("ArmSlingPoint() = %v, want %v", got, want)
	}
	if got, want := tr.ProjectilePosition(), base.Add(fixed.ToFixed(proj)); got != want {
		t.Errorf("ProjectilePosition() = %v, want %v", got, want)
	}
	if tr.SlingPoint() != tr.ProjectilePosition() {
		t.Error("SlingPoint should be the projectile end")
	}
	if v := tr.ProjectileVelocity(); v.Len() != 0 {
		t.Errorf("ProjectileVelocity() at rest = %v", v)
	}
	if tr.Counterweight().Y <= tr.Pivot().Y {
		t.Error("counterweight should start above the pivot")
	}
}

func TestArmStartsSwinging(t *testing.T) {
	tr := newTrebuchet(t, DefaultParams())
	dx := tr.Derive(tr.State(), 0)
	if dx[idxOmega] >= 0 {
		t.Errorf("arm acceleration = %v, want negative (clockwise)", dx[idxOmega])
	}
}

func TestLaunchReleases(t *testing.T) {
	p := DefaultParams()
	tr := newTrebuchet(t, p)

	steps := 0
	for tr.Advance(tick) {
		steps++
		if steps > int(p.MaxLaunchTime/tick)+1 {
			t.Fatal("trebuchet never released")
		}
	}

	if !tr.Released() {
		t.Error("Released() = false after Advance returned false")
	}
	if tr.Time() >= p.MaxLaunchTime {
		t.Errorf("released by timeout at %v, expected release angle first", tr.Time())
	}
	v := tr.ProjectileVelocity()
	if v.X() <= 0 || v.Y() <= 0 {
		t.Errorf("release velocity %v should point forward and up", v)
	}
	if elev := math.Atan2(v.Y(), v.X()); elev > p.ReleaseAngle || elev < p.ReleaseAngle-0.02 {
		t.Errorf("released at elevation %v, want just below %v", elev, p.ReleaseAngle)
	}
	if v.Len() < 30 {
		t.Errorf("release speed %v too small", v.Len())
	}

	pos := tr.ProjectilePosition()
	for i := 0; i < 10; i++ {
		if tr.Advance(tick) {
			t.Fatal("Advance returned true after release")
		}
	}
	if tr.ProjectilePosition() != pos {
		t.Error("mechanism kept moving after release")
	}
}

func TestReleaseElevationFollowsParam(t *testing.T) {
	for _, deg := range []float64{20, 45, 60} {
		p := DefaultParams()
		p.ReleaseAngle = deg * math.Pi / 180
		tr := newTrebuchet(t, p)
		for tr.Advance(tick) {
		}
		v := tr.ProjectileVelocity()
		if v.Y() <= 0 {
			t.Errorf("%v°: projectile thrown downwards, v=%v", deg, v)
		}
		if elev := math.Atan2(v.Y(), v.X()); math.Abs(elev-p.ReleaseAngle) > 0.02 {
			t.Errorf("%v°: released at elevation %v", deg, elev*180/math.Pi)
		}
	}
}

func TestTimeoutRelease(t *testing.T) {
	p := DefaultParams()
	p.MaxLaunchTime = 0.05
	tr := newTrebuchet(t, p)

	n := 0
	for tr.Advance(tick) {
		n++
	}
	if n < 45 || n > 50 {
		t.Errorf("held for %d ticks, want about 50", n)
	}
}

func TestArmEnergyConserved(t *testing.T) {
	tr := newTrebuchet(t, DefaultParams())
	e0 := tr.Energy(tr.State())
	scale := tr.params.Counterweight * tr.params.Gravity * tr.params.ShortArm

	for tr.Advance(tick) {
	}
	drift := math.Abs(tr.Energy(tr.State())-e0) / scale
	if drift > 1e-8 {
		t.Errorf("arm energy drift %e", drift)
	}
}

func TestVelocityMatchesPosition(t *testing.T) {
	tr := newTrebuchet(t, DefaultParams())
	for i := 0; i < 500; i++ {
		tr.Advance(tick)
	}

	const h = 1e-5
	p0 := tr.projectile()
	v := tr.ProjectileVelocity()
	tr.Advance(h)
	fd := tr.projectile().Sub(p0).Mul(1 / h)

	if fd.Sub(v).Len() > 1e-2*math.Max(1, v.Len()) {
		t.Errorf("velocity %v does not match finite difference %v", v, fd)
	}
}

func TestParams(t *testing.T) {
	tr := newTrebuchet(t, DefaultParams())

	if err := tr.SetParam("sling", 3); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if got := tr.GetParams()["sling"]; got != 3 {
		t.Errorf("sling = %v, want 3", got)
	}

	if err := tr.SetParam("wheels", 4); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("got %v, want ErrUnknownParam", err)
	}
	if err := tr.SetParam("long_arm", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("got %v, want ErrParameterBounds", err)
	}
	if got := tr.GetParams()["long_arm"]; got != DefaultParams().LongArm {
		t.Errorf("rejected value was kept: long_arm = %v", got)
	}
	if err := tr.SetParam("pivot_height", 1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("got %v, want ErrParameterBounds for pivot below short arm", err)
	}
	for _, bad := range []float64{0, -0.3, math.Pi / 2, 2} {
		if err := tr.SetParam("release_angle", bad); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("release_angle %v: got %v, want ErrParameterBounds", bad, err)
		}
	}

	if len(ParamNames()) != len(tr.GetParams()) {
		t.Error("ParamNames and GetParams disagree")
	}
}

func TestValidateReportsFirstBadField(t *testing.T) {
	p := DefaultParams()
	p.Counterweight = 0
	p.LongArm = -1
	p.Sling = 0
	for i := 0; i < 20; i++ {
		err := p.Validate()
		if err == nil || !strings.Contains(err.Error(), "counterweight must be positive") {
			t.Fatalf("run %d: got %v, want the counterweight error", i, err)
		}
	}
}

func TestSetParamResets(t *testing.T) {
	tr := newTrebuchet(t, DefaultParams())
	for i := 0; i < 100; i++ {
		tr.Advance(tick)
	}
	if err := tr.SetParam("counterweight", 2000); err != nil {
		t.Fatal(err)
	}
	if tr.Time() != 0 || tr.State()[idxOmega] != 0 {
		t.Error("SetParam did not reset the mechanism")
	}
}

func TestIntegratorsAgree(t *testing.T) {
	release := func(name string) float64 {
		integ, err := integrators.New(name)
		if err != nil {
			t.Fatal(err)
		}
		tr, err := New(DefaultParams(), fixed.Vec2{}, integ)
		if err != nil {
			t.Fatal(err)
		}
		for tr.Advance(tick) {
		}
		return tr.Time()
	}

	rk4 := release("rk4")
	rk45 := release("rk45")
	if math.Abs(rk4-rk45) > 2*tick {
		t.Errorf("release time differs: rk4 %v, rk45 %v", rk4, rk45)
	}
}
