package param

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/objview/pkg/math3d"
)

func TestCallbackOnlyOnChange(t *testing.T) {
	p := NewString("ModelFile", "", "")
	var got []string
	var sources []any
	p.RegisterChangeCallback(func(v string, src any) {
		got = append(got, v)
		sources = append(sources, src)
	})

	p.Set("a.obj")
	p.Set("a.obj")
	p.SetFrom("b.obj", "net")

	assert.Equal(t, []string{"a.obj", "b.obj"}, got)
	assert.Equal(t, []any{nil, "net"}, sources)
	assert.Equal(t, "b.obj", p.Get())
}

func TestFloatClamps(t *testing.T) {
	f := NewFloat("RotationAngle", "", 0, 0, 360)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 90, 90},
		{"below", -10, 0},
		{"above", 400, 360},
		{"NaN falls back to default", math.NaN(), 0},
		{"+Inf", math.Inf(1), 360},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f.Set(tc.in)
			assert.Equal(t, tc.want, f.Get())
		})
	}

	assert.Equal(t, 5.0, NewFloat("x", "", 10, 0, 5).Get(), "default is clamped too")
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "/UseTexture", NewBool("UseTexture", "", true).Address())
	assert.Equal(t, "/nav/pose", NewVec3("pose", "nav", math3d.Vec3{}).Address())
}

func TestArgsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		args []any
	}{
		{"string", NewString("s", "", ""), []any{"data/ducky.obj"}},
		{"bool", NewBool("b", "", false), []any{float32(1)}},
		{"float", NewFloat("f", "", 0, 0, 360), []any{float32(45)}},
		{"color", NewColor("c", "", White), []any{float32(0.5), float32(0.25), float32(0), float32(1)}},
		{"vec3", NewVec3("v", "", math3d.Vec3{}), []any{float32(1), float32(-2), float32(3)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.p.SetArgs(tc.args, nil))
			assert.Equal(t, tc.args, tc.p.Args())
		})
	}
}

func TestSetArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		args []any
	}{
		{"string wants string", NewString("s", "", ""), []any{float32(1)}},
		{"bool wants one", NewBool("b", "", false), nil},
		{"vec3 wants three", NewVec3("v", "", math3d.Vec3{}), []any{float32(1)}},
		{"color wants numbers", NewColor("c", "", White), []any{"red", "g", "b", "a"}},
		{"float rejects NaN", NewFloat("f", "", 0, 0, 360), []any{float32(math.NaN())}},
		{"float rejects Inf", NewFloat("f", "", 0, 0, 360), []any{math.Inf(-1)}},
		{"vec3 rejects NaN", NewVec3("v", "", math3d.Vec3{}), []any{float32(0), float32(math.NaN()), float32(0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.p.SetArgs(tc.args, nil), ErrArgs)
		})
	}
}

func TestBoolAcceptsNativeBool(t *testing.T) {
	b := NewBool("VR", "", false)
	require.NoError(t, b.SetArgs([]any{true}, nil))
	assert.True(t, b.Get())
	b.Toggle()
	assert.False(t, b.Get())
}

func TestColorThreeArgsIsOpaque(t *testing.T) {
	c := NewColor("background", "", RGBA{})
	require.NoError(t, c.SetArgs([]any{float32(1), float32(0), float32(0)}, nil))
	assert.Equal(t, RGBA{1, 0, 0, 1}, c.Get())
}

func TestColorConversions(t *testing.T) {
	c, err := ParseHex("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, "#ff8000", c.Hex())
	rgba := c.RGBA8()
	assert.Equal(t, uint8(255), rgba.R)
	assert.Equal(t, uint8(128), rgba.G)
	assert.Equal(t, uint8(255), rgba.A)

	_, err = ParseHex("nope")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	b := NewBool("UseTexture", "", true)
	b.Set(false)
	b.Reset()
	assert.True(t, b.Get())
}

func TestConcurrentSet(t *testing.T) {
	f := NewFloat("RotationAngle", "", 0, 0, 360)
	var mu sync.Mutex
	calls := 0
	f.OnChange(func(any) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Set(float64(i + 1))
			_ = f.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, calls)
}

func TestCallbacksFollowStoreOrder(t *testing.T) {
	p := NewString("ModelFile", "", "")
	var (
		mu   sync.Mutex
		last string
	)
	p.RegisterChangeCallback(func(v string, _ any) {
		mu.Lock()
		last = v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Set(string(rune('a' + i%26)))
		}()
	}
	wg.Wait()

	assert.Equal(t, p.Get(), last, "the last callback carries the stored value")
}
