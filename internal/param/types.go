package param

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/objview/pkg/math3d"
)

// ErrArgs is returned when OSC arguments don't fit a parameter.
var ErrArgs = errors.New("bad arguments")

// String is a text parameter, used for file names.
type String struct{ *Value[string] }

// NewString creates a string parameter.
func NewString(name, group, def string) *String {
	return &String{newValue(name, group, def, codec[string]{
		encode: func(s string) []any { return []any{s} },
		decode: func(args []any) (string, error) {
			if len(args) != 1 {
				return "", fmt.Errorf("%w: want 1 string, got %d args", ErrArgs, len(args))
			}
			s, ok := args[0].(string)
			if !ok {
				return "", fmt.Errorf("%w: want string, got %T", ErrArgs, args[0])
			}
			return s, nil
		},
	})}
}

// Bool is an on/off parameter. On the wire it is a float, 0 or 1.
type Bool struct{ *Value[bool] }

// NewBool creates a bool parameter.
func NewBool(name, group string, def bool) *Bool {
	return &Bool{newValue(name, group, def, codec[bool]{
		encode: func(b bool) []any {
			if b {
				return []any{float32(1)}
			}
			return []any{float32(0)}
		},
		decode: func(args []any) (bool, error) {
			if len(args) == 1 {
				if b, ok := args[0].(bool); ok {
					return b, nil
				}
			}
			f, err := floats(args, 1)
			if err != nil {
				return false, err
			}
			return f[0] != 0, nil
		},
	})}
}

// Toggle flips the value.
func (b *Bool) Toggle() { b.Set(!b.Get()) }

// Float is a number clamped to [Min, Max].
type Float struct {
	*Value[float64]
	min, max float64
}

// NewFloat creates a float parameter limited to [lo, hi].
func NewFloat(name, group string, def, lo, hi float64) *Float {
	f := &Float{
		Value: newValue(name, group, def, codec[float64]{
			encode: func(v float64) []any { return []any{float32(v)} },
			decode: func(args []any) (float64, error) {
				f, err := floats(args, 1)
				if err != nil {
					return 0, err
				}
				return f[0], nil
			},
		}),
		min: lo,
		max: hi,
	}
	clamp := func(v float64) float64 { return math.Min(hi, math.Max(lo, v)) }
	safe := clamp(def)
	if math.IsNaN(safe) {
		safe = lo
	}
	f.clamp = func(v float64) float64 {
		if math.IsNaN(v) {
			return safe
		}
		return clamp(v)
	}
	f.cur = safe
	return f
}

// Min returns the lower bound.
func (f *Float) Min() float64 { return f.min }

// Max returns the upper bound.
func (f *Float) Max() float64 { return f.max }

// RGBA is a colour with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// White is opaque white.
var White = RGBA{1, 1, 1, 1}

// FromColorful builds an RGBA from a colorful colour and an alpha.
func FromColorful(c colorful.Color, a float64) RGBA {
	c = c.Clamped()
	return RGBA{c.R, c.G, c.B, a}
}

// ParseHex parses "#rrggbb" into an opaque colour.
func ParseHex(s string) (RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return FromColorful(c, 1), nil
}

// Colorful drops alpha and returns the colour for colour-space math.
func (c RGBA) Colorful() colorful.Color { return colorful.Color{R: c.R, G: c.G, B: c.B} }

// RGBA8 converts to 8-bit channels.
func (c RGBA) RGBA8() color.RGBA {
	r, g, b := c.Colorful().Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Min(1, math.Max(0, c.A)) * 255))}
}

// Hex formats the colour as "#rrggbb".
func (c RGBA) Hex() string { return c.Colorful().Clamped().Hex() }

// Color is an RGBA parameter.
type Color struct{ *Value[RGBA] }

// NewColor creates a colour parameter.
func NewColor(name, group string, def RGBA) *Color {
	return &Color{newValue(name, group, def, codec[RGBA]{
		encode: func(c RGBA) []any {
			return []any{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
		},
		decode: func(args []any) (RGBA, error) {
			if len(args) == 3 {
				f, err := floats(args, 3)
				if err != nil {
					return RGBA{}, err
				}
				return RGBA{f[0], f[1], f[2], 1}, nil
			}
			f, err := floats(args, 4)
			if err != nil {
				return RGBA{}, err
			}
			return RGBA{f[0], f[1], f[2], f[3]}, nil
		},
	})}
}

// Vec3 is a position parameter.
type Vec3 struct{ *Value[math3d.Vec3] }

// NewVec3 creates a vector parameter.
func NewVec3(name, group string, def math3d.Vec3) *Vec3 {
	return &Vec3{newValue(name, group, def, codec[math3d.Vec3]{
		encode: func(v math3d.Vec3) []any {
			return []any{float32(v.X), float32(v.Y), float32(v.Z)}
		},
		decode: func(args []any) (math3d.Vec3, error) {
			f, err := floats(args, 3)
			if err != nil {
				return math3d.Vec3{}, err
			}
			return math3d.V3(f[0], f[1], f[2]), nil
		},
	})}
}

// floats reads exactly n numeric arguments.
func floats(args []any, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d numbers, got %d args", ErrArgs, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		switch v := a.(type) {
		case float32:
			out[i] = float64(v)
		case float64:
			out[i] = v
		case int32:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		case int:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("%w: argument %d is %T", ErrArgs, i, a)
		}
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("%w: argument %d is %v", ErrArgs, i, out[i])
		}
	}
	return out, nil
}
