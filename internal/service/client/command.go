package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/vent-alarm/internal/config"
	"github.com/oshokin/vent-alarm/internal/domain/alarm"
	"github.com/oshokin/vent-alarm/internal/logger"
	"github.com/oshokin/vent-alarm/internal/service/common"
)

// Options configures a panel command.
type Options struct {
	// ConfigPath to the YAML settings file; a missing file means defaults.
	ConfigPath string
	// ServerAddress overrides the panel address from the settings.
	ServerAddress string
	// Output receives command output; defaults to stdout.
	Output io.Writer
}

// Raise raises an alarm given by name or numeric id.
func Raise(ctx context.Context, opts *Options, name string) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	id, err := resolveAlarm(cfg, name)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, cfg, func(c *common.Client) error {
		if err := c.Raise(ctx, int(id)); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Alarm raise sent", "alarm", name, "id", int(id))

		return nil
	})
}

// PressKey sends a front-panel key press.
func PressKey(ctx context.Context, opts *Options, key string) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	return withClient(ctx, opts, cfg, func(c *common.Client) error {
		return c.PressKey(ctx, key)
	})
}

// Reset asks the controller to reset every alarm.
func Reset(ctx context.Context, opts *Options) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	return withClient(ctx, opts, cfg, func(c *common.Client) error {
		return c.Reset(ctx)
	})
}

// Status prints the controller state.
func Status(ctx context.Context, opts *Options) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	return withClient(ctx, opts, cfg, func(c *common.Client) error {
		status, err := c.Status(ctx)
		if err != nil {
			return err
		}

		return PrintStatus(output(opts), status)
	})
}

// Journal prints up to limit most recent journal entries.
func Journal(ctx context.Context, opts *Options, limit int) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	return withClient(ctx, opts, cfg, func(c *common.Client) error {
		entries, err := c.Journal(ctx, limit)
		if err != nil {
			return err
		}

		return PrintJournal(output(opts), entries)
	})
}

// Catalog prints the alarm table as configured, without contacting the
// controller.
func Catalog(opts *Options) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	catalog, err := alarm.DefaultCatalog(alarm.WithMuteLimits(cfg.MuteLimits))
	if err != nil {
		return fmt.Errorf("build alarm catalog: %w", err)
	}

	w := tabwriter.NewWriter(output(opts), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMUTE LIMIT\tMESSAGE")

	for _, def := range catalog.Definitions() {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", def.ID, def.Name, formatLimit(def.MuteLimit), def.Message)
	}

	return w.Flush()
}

// PrintStatus renders a panel status response.
func PrintStatus(w io.Writer, status *structpb.Struct) error {
	fields := status.GetFields()

	active := "none"
	if name := fields["active"].GetStringValue(); name != "" {
		active = name
	}

	sound := "silent"
	if fields["beeping"].GetBoolValue() {
		sound = "beeping"
	}

	display := fields["display"].GetStringValue()
	if display == "" {
		display = "-"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "active: %s (%s)\n", active, sound)
	_, _ = fmt.Fprintf(tw, "display: %s\n\n", display)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tMUTES")

	for _, v := range fields["alarms"].GetListValue().GetValues() {
		a := v.GetStructValue().GetFields()

		mutes := fmt.Sprintf("%d/%s",
			int(a["mute_count"].GetNumberValue()),
			formatLimit(int(a["mute_limit"].GetNumberValue())),
		)
		if a["exhausted"].GetBoolValue() {
			mutes += " (visual only)"
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			int(a["id"].GetNumberValue()),
			a["name"].GetStringValue(),
			a["status"].GetStringValue(),
			mutes,
		)
	}

	return tw.Flush()
}

// PrintJournal renders a panel journal response, one event per row.
func PrintJournal(w io.Writer, journal *structpb.Struct) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "AT\tEVENT\tDETAIL\tORIGIN")

	for _, v := range journal.GetFields()["entries"].GetListValue().GetValues() {
		e := v.GetStructValue().GetFields()

		var detail string

		switch e["type"].GetStringValue() {
		case "alarm_raise":
			detail = "alarm " + strconv.Itoa(int(e["alarm_id"].GetNumberValue()))
		case "key_press", "key_release":
			detail = e["key"].GetStringValue()
		case "display_on":
			detail = e["message"].GetStringValue()
		default:
			detail = "-"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e["at"].GetStringValue(),
			e["type"].GetStringValue(),
			detail,
			e["origin"].GetStringValue(),
		)
	}

	return tw.Flush()
}

// resolveAlarm accepts an alarm name or its numeric id.
func resolveAlarm(cfg *config.Config, name string) (alarm.ID, error) {
	catalog, err := alarm.DefaultCatalog(alarm.WithMuteLimits(cfg.MuteLimits))
	if err != nil {
		return 0, fmt.Errorf("build alarm catalog: %w", err)
	}

	if n, err := strconv.Atoi(name); err == nil {
		return alarm.ID(n), nil
	}

	return catalog.Resolve(name)
}

// withClient connects to the controller, runs fn and closes the connection.
func withClient(ctx context.Context, opts *Options, cfg *config.Config, fn func(c *common.Client) error) error {
	address := cfg.Panel.ListenAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect caller identity", "error", err)
	}

	c, err := common.Dial(ctx, address,
		common.WithCallTimeout(cfg.Panel.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	return fn(c)
}

func output(opts *Options) io.Writer {
	if opts.Output != nil {
		return opts.Output
	}

	return os.Stdout
}

func formatLimit(limit int) string {
	if limit == alarm.Unlimited {
		return "∞"
	}

	return strconv.Itoa(limit)
}
