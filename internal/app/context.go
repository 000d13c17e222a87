package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/wildlife-analytics/internal/conf"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
)

// Context holds the command line state shared by all sub-commands.
type Context struct {
	Viper      *viper.Viper
	ConfigFile string
}

// NewContext creates a Context over a fresh configuration instance.
func NewContext() *Context {
	return &Context{Viper: conf.NewViper()}
}

// Settings loads and validates the configuration.
func (c *Context) Settings() (*conf.Settings, error) {
	return conf.Load(c.Viper, c.ConfigFile)
}

// Open loads the configuration and builds an App from it.
func (c *Context) Open() (*App, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	return New(settings)
}

// BindFlag binds a command flag to a configuration key so the flag, when
// set, overrides the config file and environment.
func (c *Context) BindFlag(cmd *cobra.Command, key, flag string) error {
	if err := c.Viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		return fmt.Errorf("error binding flag %s: %w", flag, err)
	}
	return nil
}

// WindowFlags are the detection selection flags shared by report commands.
type WindowFlags struct {
	Organization uint
	Cameras      []uint
	Start        string
	End          string
	Days         int
}

// Register adds the window flags to cmd.
func (f *WindowFlags) Register(cmd *cobra.Command) {
	cmd.Flags().UintVar(&f.Organization, "org", 0, "Restrict to cameras of an organization")
	cmd.Flags().UintSliceVar(&f.Cameras, "camera", nil, "Restrict to camera IDs (repeatable)")
	cmd.Flags().StringVar(&f.Start, "start", "", "Window start, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&f.End, "end", "", "Window end, RFC 3339 or YYYY-MM-DD (default now)")
	cmd.Flags().IntVar(&f.Days, "days", 0, "Window length in days ending at --end (default analytics.windowdays)")
}

// Filter returns the camera filter selected by the flags.
func (f *WindowFlags) Filter() detection.Filter {
	return detection.Filter{OrganizationID: f.Organization, CameraIDs: f.Cameras}
}

// Window resolves the time window in loc. Zero values are left for the
// engine to default.
func (f *WindowFlags) Window(loc *time.Location) (start, end time.Time, err error) {
	if end, err = ParseTime(f.End, loc); err != nil {
		return start, end, err
	}
	if start, err = ParseTime(f.Start, loc); err != nil {
		return start, end, err
	}
	if f.Days < 0 {
		return start, end, errors.Newf("--days must not be negative").
			Component("cli").
			Category(errors.CategoryValidation).
			Build()
	}
	if f.Days > 0 && start.IsZero() {
		anchor := end
		if anchor.IsZero() {
			anchor = time.Now().In(loc)
			end = anchor
		}
		start = anchor.AddDate(0, 0, -f.Days)
	}
	return start, end, nil
}

// ParseTime accepts an RFC 3339 timestamp or a YYYY-MM-DD date, which is
// read as midnight in loc. An empty string yields the zero time.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, errors.Newf("invalid time %q, use RFC 3339 or YYYY-MM-DD", s).
			Component("cli").
			Category(errors.CategoryValidation).
			Build()
	}
	return t, nil
}
