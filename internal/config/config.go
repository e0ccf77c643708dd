package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/jointsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTargetDeg   = 45.0
	DefaultDt          = 0.001
	DefaultDuration    = 4.0
	DefaultKp          = 30.0
	DefaultKi          = 10.0
	DefaultKd          = 2.0
	DefaultTorqueLimit = 10.0
	DefaultInertia     = 0.01
	DefaultDamping     = 0.1
	DefaultTolerance   = 0.02
	DefaultOutput      = "results/joint_pid_step_response.png"
)

type Config struct {
	Target     float64          `yaml:"target"`
	TargetDeg  *float64         `yaml:"target_deg,omitempty"`
	Duration   float64          `yaml:"duration" validate:"gt=0"`
	Dt         float64          `yaml:"dt" validate:"gt=0"`
	Tolerance  float64          `yaml:"tolerance" validate:"gte=0,lt=1"`
	Output     string           `yaml:"output,omitempty"`
	Plant      PlantConfig      `yaml:"plant"`
	Controller ControllerConfig `yaml:"controller"`
}

type PlantConfig struct {
	Inertia float64 `yaml:"inertia" validate:"gt=0"`
	Damping float64 `yaml:"damping" validate:"gte=0"`
}

// ControllerConfig holds PID gains. TorqueLimit is shorthand for symmetric
// bounds; an explicit OutputMin or OutputMax wins over it on that side.
type ControllerConfig struct {
	Kp          float64  `yaml:"kp"`
	Ki          float64  `yaml:"ki"`
	Kd          float64  `yaml:"kd"`
	TorqueLimit *float64 `yaml:"torque_limit,omitempty" validate:"omitempty,gt=0"`
	OutputMin   *float64 `yaml:"output_min,omitempty"`
	OutputMax   *float64 `yaml:"output_max,omitempty"`
}

func float(v float64) *float64 { return &v }

func DefaultConfig() *Config {
	return &Config{
		Target:    DefaultTargetDeg * math.Pi / 180,
		Duration:  DefaultDuration,
		Dt:        DefaultDt,
		Tolerance: DefaultTolerance,
		Output:    DefaultOutput,
		Plant: PlantConfig{
			Inertia: DefaultInertia,
			Damping: DefaultDamping,
		},
		Controller: ControllerConfig{
			Kp:          DefaultKp,
			Ki:          DefaultKi,
			Kd:          DefaultKd,
			TorqueLimit: float(DefaultTorqueLimit),
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes a YAML file over cfg; keys absent from the file keep
// their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Decode(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Decode applies a YAML document over cfg. Unknown keys are rejected. A
// document that sets target without target_deg clears any target_deg
// already in cfg, so the later layer decides the target.
func Decode(data []byte, cfg *Config) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	keys := topLevelKeys(&doc)
	if keys["target"] && !keys["target_deg"] {
		cfg.TargetDeg = nil
	}
	return nil
}

func topLevelKeys(doc *yaml.Node) map[string]bool {
	keys := make(map[string]bool)
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys[n.Content[i].Value] = true
	}
	return keys
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.TargetDeg = clonePtr(c.TargetDeg)
	out.Controller.TorqueLimit = clonePtr(c.Controller.TorqueLimit)
	out.Controller.OutputMin = clonePtr(c.Controller.OutputMin)
	out.Controller.OutputMax = clonePtr(c.Controller.OutputMax)
	return &out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TargetRad resolves the target angle in radians; target_deg wins when set.
func (c *Config) TargetRad() float64 {
	if c.TargetDeg != nil {
		return *c.TargetDeg * math.Pi / 180
	}
	return c.Target
}

// Limits resolves the effective output bounds.
func (c *Config) Limits() (lo, hi *float64) {
	cc := c.Controller
	if cc.TorqueLimit != nil {
		lo, hi = float(-*cc.TorqueLimit), float(*cc.TorqueLimit)
	}
	if cc.OutputMin != nil {
		lo = float(*cc.OutputMin)
	}
	if cc.OutputMax != nil {
		hi = float(*cc.OutputMax)
	}
	return lo, hi
}

// SetTorqueLimit replaces any bounds with symmetric ±limit. A non-positive
// limit removes them.
func (c *Config) SetTorqueLimit(limit float64) {
	c.Controller.OutputMin, c.Controller.OutputMax = nil, nil
	if limit <= 0 {
		c.Controller.TorqueLimit = nil
		return
	}
	c.Controller.TorqueLimit = float(limit)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and the ordering of the resolved bounds.
// Failures unwrap to dynamo.ErrInvalidParameter.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			value, _ := toFloat(fe.Value())
			return &dynamo.ParamError{
				Name:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Value:  value,
				Reason: fmt.Sprintf("fails %s=%s", fe.Tag(), fe.Param()),
			}
		}
		return err
	}
	return c.RunConfig().Validate()
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case *float64:
		if x != nil {
			return *x, true
		}
	}
	return math.NaN(), false
}

// RunConfig converts to the simulation's parameter set.
func (c *Config) RunConfig() dynamo.Config {
	lo, hi := c.Limits()
	return dynamo.Config{
		Target:   c.TargetRad(),
		Duration: c.Duration,
		Dt:       c.Dt,
		Plant: dynamo.PlantParams{
			Inertia: c.Plant.Inertia,
			Damping: c.Plant.Damping,
		},
		Controller: dynamo.ControllerParams{
			Kp:        c.Controller.Kp,
			Ki:        c.Controller.Ki,
			Kd:        c.Controller.Kd,
			OutputMin: lo,
			OutputMax: hi,
		},
	}
}
