package alarm

import (
	"context"
	"fmt"

	"github.com/oshokin/vent-alarm/internal/logger"
)

// DefaultMuteLimit is the number of mutes after which a ventilator alarm
// becomes visual-only.
const DefaultMuteLimit = 3

// Ventilator alarm ids in priority order.
const (
	HighPressure ID = iota
	LowPressure
	UnderSpeed
	FastCalibrationToStart
	FastCalibrationDone
	BadPressureSensor
)

// CatalogOption customizes DefaultCatalog.
type CatalogOption func(defs []Definition) error

// WithMuteLimits overrides the mute limit of alarms by name.
func WithMuteLimits(limits map[string]int) CatalogOption {
	return func(defs []Definition) error {
		for name, limit := range limits {
			found := false

			for i := range defs {
				if defs[i].Name == name {
					defs[i].MuteLimit = limit
					found = true

					break
				}
			}

			if !found {
				return fmt.Errorf("mute limit override: %w: %q", ErrUnknownAlarm, name)
			}
		}

		return nil
	}
}

// DefaultCatalog returns the ventilator alarm table. Pressure alarms come
// first so they win over calibration notices raised at the same time.
func DefaultCatalog(opts ...CatalogOption) (*Catalog, error) {
	pressureHooks := ActionFuncs{
		Trigger: logHook("Pressure alarm triggered"),
		Mute:    logHook("Pressure alarm muted"),
	}

	defs := []Definition{
		{
			ID:        HighPressure,
			Name:      "high_pressure",
			Message:   "HIGH PRESSURE",
			MuteLimit: DefaultMuteLimit,
			Actions:   pressureHooks,
		},
		{
			ID:        LowPressure,
			Name:      "low_pressure",
			Message:   "LOW PRESSURE",
			MuteLimit: DefaultMuteLimit,
			Actions:   pressureHooks,
		},
		{
			ID:        UnderSpeed,
			Name:      "under_speed",
			Message:   "UNDER SPEED",
			MuteLimit: DefaultMuteLimit,
		},
		{
			ID:        FastCalibrationToStart,
			Name:      "fast_calib_to_start",
			Message:   "FAST CALIB: RELEASE TUBE",
			MuteLimit: DefaultMuteLimit,
		},
		{
			ID:        FastCalibrationDone,
			Name:      "fast_calib_done",
			Message:   "FAST CALIB DONE",
			MuteLimit: DefaultMuteLimit,
		},
		{
			ID:        BadPressureSensor,
			Name:      "bad_pressure_sensor",
			Message:   "BAD PRESSURE SENSOR",
			MuteLimit: DefaultMuteLimit,
		},
	}

	for _, opt := range opts {
		if err := opt(defs); err != nil {
			return nil, err
		}
	}

	return NewCatalog(defs...)
}

func logHook(message string) func(ctx context.Context, def Definition) {
	return func(ctx context.Context, def Definition) {
		logger.InfoKV(ctx, message, "alarm", def.Name)
	}
}
