package client

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/vent-alarm/internal/config"
	"github.com/oshokin/vent-alarm/internal/domain/alarm"
)

// TestResolveAlarm accepts names and raw ids.
func TestResolveAlarm(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	id, err := resolveAlarm(cfg, "under_speed")
	require.NoError(t, err)
	require.Equal(t, alarm.UnderSpeed, id)

	id, err = resolveAlarm(cfg, "4")
	require.NoError(t, err)
	require.Equal(t, alarm.FastCalibrationDone, id)

	_, err = resolveAlarm(cfg, "apnea")
	require.ErrorIs(t, err, alarm.ErrUnknownAlarm)
}

// TestCatalog prints configured limits.
func TestCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{MuteLimits: map[string]int{"under_speed": alarm.Unlimited}}))

	var out bytes.Buffer
	require.NoError(t, Catalog(&Options{ConfigPath: path, Output: &out}))

	text := out.String()
	require.Contains(t, text, "high_pressure")
	require.Contains(t, text, "BAD PRESSURE SENSOR")
	require.Regexp(t, `under_speed\s+∞`, text)
}

// TestPrintStatus renders active alarm, display and rows.
func TestPrintStatus(t *testing.T) {
	t.Parallel()

	status, err := structpb.NewStruct(map[string]any{
		"active":  "low_pressure",
		"beeping": false,
		"display": "LOW PRESSURE",
		"alarms": []any{
			map[string]any{"id": 1, "name": "low_pressure", "status": "on", "mute_count": 3, "mute_limit": 3, "exhausted": true},
		},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, PrintStatus(&out, status))

	text := out.String()
	require.Contains(t, text, "active: low_pressure (silent)")
	require.Contains(t, text, "display: LOW PRESSURE")
	require.Contains(t, text, "3/3 (visual only)")

	out.Reset()
	require.NoError(t, PrintStatus(&out, new(structpb.Struct)))
	require.Contains(t, out.String(), "active: none (silent)")
	require.Contains(t, out.String(), "display: -")
}

// TestPrintJournal renders one row per entry with a per-type detail column.
func TestPrintJournal(t *testing.T) {
	t.Parallel()

	journal, err := structpb.NewStruct(map[string]any{
		"entries": []any{
			map[string]any{
				"at": "2026-03-01T08:30:00Z", "type": "alarm_raise", "alarm_id": 2,
				"origin": "panel:nurse@ward3",
			},
			map[string]any{
				"at": "2026-03-01T08:30:01Z", "type": "key_press", "key": "mute",
				"origin": "panel:nurse@ward3",
			},
			map[string]any{
				"at": "2026-03-01T08:30:01Z", "type": "display_on", "message": "UNDER SPEED",
				"origin": "annunciator",
			},
		},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, PrintJournal(&out, journal))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.Regexp(t, `^AT\s+EVENT\s+DETAIL\s+ORIGIN$`, lines[0])
	require.Regexp(t, `alarm_raise\s+alarm 2\s+panel:nurse@ward3$`, lines[1])
	require.Regexp(t, `key_press\s+mute\s+`, lines[2])
	require.Regexp(t, `display_on\s+UNDER SPEED\s+annunciator$`, lines[3])
}
