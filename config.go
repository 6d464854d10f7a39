package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// defaultConfigFile 在未指定 --config 时，从当前目录读取（可以不存在）。
const defaultConfigFile = "constraintkit.toml"

// Config 是 constraintkit.toml 的内容。优先级：命令行参数 > CL 文档 > 配置文件。
type Config struct {
	LogLevel string       `toml:"log_level"`
	Canvas   CanvasConfig `toml:"canvas"`
	Motion   MotionConfig `toml:"motion"`
	Output   OutputConfig `toml:"output"`
	Render   RenderConfig `toml:"render"`
}

// CanvasConfig 给出根容器的默认尺寸，0 表示由 CL 文档决定。
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type MotionConfig struct {
	Curve    string  `toml:"curve"`
	Easing   string  `toml:"easing"`
	FPS      int     `toml:"fps"`
	Duration float64 `toml:"duration"`
}

// OutputConfig 是 solve 的默认输出路径，空字符串表示不输出。
type OutputConfig struct {
	Debug string `toml:"debug"`
	PDF   string `toml:"pdf"`
	DOT   string `toml:"dot"`
	SVG   string `toml:"svg"`
}

type RenderConfig struct {
	Scale  float64 `toml:"scale"`
	Margin float64 `toml:"margin"`
	Font   string  `toml:"font"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Motion:   MotionConfig{Curve: "spline", FPS: 30, Duration: 1},
	}
}

// loadConfig 读取 path；path 为空时尝试 defaultConfigFile，文件不存在时返回默认配置。
// 未识别的键会被记录为警告。
func loadConfig(path string, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	if cfg.Motion.FPS <= 0 {
		return Config{}, fmt.Errorf("配置 %s: motion.fps 必须为正数", path)
	}
	return cfg, nil
}

// level 把配置中的日志级别转换为 log.Level，无法识别时为 info。
func (c Config) level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
