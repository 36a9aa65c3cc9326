package ui

import (
	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
)

// Options tune navigation. The zero value is not useful; start from
// DefaultOptions or OptionsFromConfig.
type Options struct {
	// BasePath is the page the journal lives at, used to build links.
	BasePath        string
	DefaultDay      journal.Day
	MaxPageButtons  int
	WidePageSize    int
	NarrowPageSize  int
	WideBreakpoint  int
	PhoneBreakpoint int
}

func DefaultOptions() Options {
	return Options{
		BasePath:        "/",
		DefaultDay:      1,
		MaxPageButtons:  999,
		WidePageSize:    20,
		NarrowPageSize:  7,
		WideBreakpoint:  900,
		PhoneBreakpoint: 600,
	}
}

func OptionsFromConfig(cfg config.JournalConfig) Options {
	o := DefaultOptions()
	if cfg.DefaultDay > 0 {
		o.DefaultDay = journal.Day(cfg.DefaultDay)
	}
	if cfg.MaxPageButtons > 0 {
		o.MaxPageButtons = cfg.MaxPageButtons
	}
	if cfg.WidePageSize > 0 {
		o.WidePageSize = cfg.WidePageSize
	}
	if cfg.NarrowPageSize > 0 {
		o.NarrowPageSize = cfg.NarrowPageSize
	}
	if cfg.WideBreakpoint > 0 {
		o.WideBreakpoint = cfg.WideBreakpoint
	}
	if cfg.PhoneBreakpoint > 0 {
		o.PhoneBreakpoint = cfg.PhoneBreakpoint
	}
	return o
}

// WithDefaults fills every unset field from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.BasePath == "" {
		o.BasePath = d.BasePath
	}
	if !o.DefaultDay.Valid() {
		o.DefaultDay = d.DefaultDay
	}
	if o.MaxPageButtons <= 0 {
		o.MaxPageButtons = d.MaxPageButtons
	}
	if o.WidePageSize <= 0 {
		o.WidePageSize = d.WidePageSize
	}
	if o.NarrowPageSize <= 0 {
		o.NarrowPageSize = d.NarrowPageSize
	}
	if o.WideBreakpoint <= 0 {
		o.WideBreakpoint = d.WideBreakpoint
	}
	if o.PhoneBreakpoint <= 0 {
		o.PhoneBreakpoint = d.PhoneBreakpoint
	}
	return o
}

// PageSize returns how many entries fit on a page for a viewport width. An
// unknown width (0) counts as wide.
func (o Options) PageSize(width int) int {
	if width > 0 && width < o.WideBreakpoint {
		return o.NarrowPageSize
	}
	return o.WidePageSize
}

// Collapsed reports whether the trip log starts closed, which it does on
// phones.
func (o Options) Collapsed(width int) bool {
	return width > 0 && width < o.PhoneBreakpoint
}
