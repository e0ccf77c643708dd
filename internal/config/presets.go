package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"baseline": {
		TargetDeg: float(45), Duration: 5.0, Dt: 0.001, Tolerance: DefaultTolerance,
		Plant:      PlantConfig{Inertia: DefaultInertia, Damping: DefaultDamping},
		Controller: ControllerConfig{Kp: 20, Ki: 5, Kd: 1, TorqueLimit: float(5)},
	},
	"unbounded": {
		TargetDeg: float(45), Duration: 4.0, Dt: 0.001, Tolerance: DefaultTolerance,
		Plant:      PlantConfig{Inertia: DefaultInertia, Damping: DefaultDamping},
		Controller: ControllerConfig{Kp: 30, Ki: 10, Kd: 2},
	},
	"sluggish": {
		TargetDeg: float(45), Duration: 8.0, Dt: 0.001, Tolerance: DefaultTolerance,
		Plant:      PlantConfig{Inertia: DefaultInertia, Damping: DefaultDamping},
		Controller: ControllerConfig{Kp: 5, Ki: 1, Kd: 0.5, TorqueLimit: float(10)},
	},
	"aggressive": {
		TargetDeg: float(45), Duration: 4.0, Dt: 0.001, Tolerance: DefaultTolerance,
		Plant:      PlantConfig{Inertia: DefaultInertia, Damping: DefaultDamping},
		Controller: ControllerConfig{Kp: 80, Ki: 40, Kd: 4, TorqueLimit: float(10)},
	},
	"heavy": {
		TargetDeg: float(90), Duration: 6.0, Dt: 0.001, Tolerance: DefaultTolerance,
		Plant:      PlantConfig{Inertia: 0.05, Damping: 0.2},
		Controller: ControllerConfig{Kp: 30, Ki: 10, Kd: 2, TorqueLimit: float(10)},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
