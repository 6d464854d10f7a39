package binding

// View 是动画的下游：每一帧接收布局矩形、属性值与自定义属性。
type View interface {
	SetLayout(x, y, width, height float64)
	SetProperty(p Property, value float64)
	SetCustom(name string, value CustomAttribute)
}

// Frame 是 Recorder 记录下的一帧视图状态。
type Frame struct {
	X          float64                    `json:"x"`
	Y          float64                    `json:"y"`
	Width      float64                    `json:"width"`
	Height     float64                    `json:"height"`
	Properties map[string]float64         `json:"properties,omitempty"`
	Custom     map[string]CustomAttribute `json:"custom,omitempty"`
}

// Recorder 是记录最后写入值的 View，用于测试与命令行输出。
type Recorder struct {
	Frame
	Writes int `json:"-"`
}

// NewRecorder 返回空的 Recorder。
func NewRecorder() *Recorder {
	return &Recorder{Frame: Frame{
		Properties: make(map[string]float64),
		Custom:     make(map[string]CustomAttribute),
	}}
}

func (r *Recorder) SetLayout(x, y, width, height float64) {
	r.X, r.Y, r.Width, r.Height = x, y, width, height
	r.Writes++
}

func (r *Recorder) SetProperty(p Property, value float64) {
	r.Properties[p.String()] = value
	r.Writes++
}

func (r *Recorder) SetCustom(name string, value CustomAttribute) {
	r.Custom[name] = value
	r.Writes++
}

// Property 返回已写入的属性值，没有写入时返回属性默认值。
func (r *Recorder) Property(p Property) float64 {
	if v, ok := r.Properties[p.String()]; ok {
		return v
	}
	return p.Default()
}

// Snapshot 复制当前帧。
func (r *Recorder) Snapshot() Frame {
	f := Frame{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
		Properties: make(map[string]float64, len(r.Properties)),
		Custom:     make(map[string]CustomAttribute, len(r.Custom)),
	}
	for k, v := range r.Properties {
		f.Properties[k] = v
	}
	for k, v := range r.Custom {
		f.Custom[k] = v
	}
	return f
}
