package spline

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/constraintkit/motion/curvefit"
)

// WaveShape 是振荡器的波形。
type WaveShape int

const (
	WaveSin WaveShape = iota
	WaveSquare
	WaveTriangle
	WaveSaw
	WaveReverseSaw
	WaveCos
	WaveBounce
	WaveCustom
)

var waveNames = [...]string{
	WaveSin:        "sin",
	WaveSquare:     "square",
	WaveTriangle:   "triangle",
	WaveSaw:        "sawtooth",
	WaveReverseSaw: "reverseSawtooth",
	WaveCos:        "cos",
	WaveBounce:     "bounce",
	WaveCustom:     "custom",
}

func (w WaveShape) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return fmt.Sprintf("WaveShape(%d)", int(w))
	}
	return waveNames[w]
}

// ParseWaveShape 解析波形名，"spline(...)" 视为自定义波形。
func ParseWaveShape(s string) (WaveShape, error) {
	if strings.HasPrefix(s, "spline(") {
		return WaveCustom, nil
	}
	for i, n := range waveNames {
		if strings.EqualFold(n, s) {
			return WaveShape(i), nil
		}
	}
	switch strings.ToLower(s) {
	case "saw":
		return WaveSaw, nil
	case "reversesaw":
		return WaveReverseSaw, nil
	}
	return WaveSin, fmt.Errorf("unknown wave shape %q", s)
}

// Wave 在相位 angle（以周期为单位）处求波形值，custom 只用于 WaveCustom。
func Wave(shape WaveShape, angle float64, custom curvefit.CurveFit) float64 {
	switch shape {
	case WaveSquare:
		return sign(0.5 - math.Mod(angle, 1))
	case WaveTriangle:
		return 1 - math.Abs(math.Mod(angle*4+1, 4)-2)
	case WaveSaw:
		return math.Mod(angle*2+1, 2) - 1
	case WaveReverseSaw:
		return 1 - math.Mod(angle*2+1, 2)
	case WaveCos:
		return math.Cos(2 * math.Pi * angle)
	case WaveBounce:
		x := 1 - math.Abs(math.Mod(angle*4, 4)-2)
		return 1 - x*x
	case WaveCustom:
		if custom == nil {
			return 0
		}
		return custom.PosAt(math.Mod(angle, 1), 0)
	default:
		return math.Sin(2 * math.Pi * angle)
	}
}

// WaveSlope 是 Wave 对时间的导数，dAngle 为相位对时间的导数。
func WaveSlope(shape WaveShape, angle, dAngle float64, custom curvefit.CurveFit) float64 {
	switch shape {
	case WaveSquare:
		return 0
	case WaveTriangle:
		return 4 * dAngle * sign(math.Mod(angle*4+3, 4)-2)
	case WaveSaw:
		return dAngle * 2
	case WaveReverseSaw:
		return -dAngle * 2
	case WaveCos:
		return -2 * math.Pi * dAngle * math.Sin(2*math.Pi*angle)
	case WaveBounce:
		return 4 * dAngle * (math.Mod(angle*4+2, 4) - 2)
	case WaveCustom:
		if custom == nil {
			return 0
		}
		return custom.SlopeAt(math.Mod(angle, 1), 0)
	default:
		return 2 * math.Pi * dAngle * math.Cos(2*math.Pi*angle)
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
