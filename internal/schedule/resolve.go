package schedule

import "github.com/fischervincent/grow-journal-sub000/internal/models"

// EffectiveConfig is the fully resolved reminder configuration for one
// (plant, event type) pair. It is derived, never persisted.
type EffectiveConfig struct {
	Enabled  bool                    `json:"enabled"`
	Strategy models.ReminderStrategy `json:"strategy"`
	Interval Interval                `json:"interval"`
	// IsCustom is true iff a live plant override with use_default=false
	// produced this configuration.
	IsCustom bool `json:"is_custom"`
}

// Resolve applies default/override precedence. Either input may be nil
// (absent). A tombstoned plant row is treated as absent. Resolve is pure
// and idempotent; every call site that needs an effective configuration
// must go through it.
//
// Precedence:
//  1. A live plant row with use_default=false wins outright.
//  2. A live plant row with use_default=true keeps its own enabled flag
//     but takes timing from the default; with no default the pair is
//     disabled regardless of the plant's flag.
//  3. No plant row: the default applies verbatim when present and
//     enabled, otherwise the pair is disabled.
func Resolve(plant *models.PlantReminderConfig, def *models.ReminderDefault) EffectiveConfig {
	if plant != nil && plant.DeletedAt != nil {
		plant = nil
	}
	switch {
	case plant != nil && !plant.UseDefault:
		return EffectiveConfig{
			Enabled:  plant.Enabled,
			Strategy: plant.Strategy,
			Interval: Interval{Value: plant.IntervalValue, Unit: plant.IntervalUnit},
			IsCustom: true,
		}
	case plant != nil:
		if def == nil {
			return EffectiveConfig{}
		}
		return EffectiveConfig{
			Enabled:  plant.Enabled,
			Strategy: def.Strategy,
			Interval: Interval{Value: def.IntervalValue, Unit: def.IntervalUnit},
		}
	default:
		if def == nil || !def.Enabled {
			return EffectiveConfig{}
		}
		return EffectiveConfig{
			Enabled:  def.Enabled,
			Strategy: def.Strategy,
			Interval: Interval{Value: def.IntervalValue, Unit: def.IntervalUnit},
		}
	}
}
