package device

import (
	"github.com/SimWindows/simwin-sub002/pkg/formula"
	"github.com/SimWindows/simwin-sub002/pkg/material"
	"github.com/SimWindows/simwin-sub002/pkg/report"
	"github.com/SimWindows/simwin-sub002/pkg/solution"
)

type options struct {
	config   solution.Config
	observer report.Observer
	library  *material.Library
	compiler formula.Compiler
}

type Option func(*options)

func WithConfig(cfg solution.Config) Option {
	return func(o *options) { o.config = cfg }
}

func WithObserver(obs report.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func WithLibrary(lib *material.Library) Option {
	return func(o *options) {
		if lib != nil {
			o.library = lib
		}
	}
}

// WithCompiler sets the compiler for material parameter overrides.
func WithCompiler(c formula.Compiler) Option {
	return func(o *options) { o.compiler = c }
}

func defaultOptions() options {
	return options{
		config:   solution.DefaultConfig(),
		observer: report.Nop{},
		library:  material.DefaultLibrary(),
	}
}
