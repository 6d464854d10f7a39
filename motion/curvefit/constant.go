package curvefit

// ConstantCurve 在任何时刻都返回同一个值，斜率为 0。
type ConstantCurve struct {
	time  float64
	value []float64
}

func NewConstant(time float64, value []float64) *ConstantCurve {
	return &ConstantCurve{time: time, value: append([]float64(nil), value...)}
}

func (c *ConstantCurve) Pos(_ float64, out []float64) { copy(out, c.value) }

func (c *ConstantCurve) PosAt(_ float64, j int) float64 { return c.value[j] }

func (c *ConstantCurve) Slope(_ float64, out []float64) {
	for i := range out {
		out[i] = 0
	}
}

func (c *ConstantCurve) SlopeAt(float64, int) float64 { return 0 }

func (c *ConstantCurve) TimePoints() []float64 { return []float64{c.time} }
