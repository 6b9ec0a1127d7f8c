package tower

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
	"github.com/matzehuels/jengatower/pkg/tower/sim"
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Layout layout.Options

	// ReconfigDuration is the length of the reconfiguration animation.
	ReconfigDuration time.Duration
	TimeDivisor      float64
	BoostedDivisor   float64
	MaxSubSteps      int

	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Layout.Brick == (layout.Brick{}) {
		lo := layout.DefaultOptions()
		lo.Limit, lo.ShowAll = o.Layout.Limit, o.Layout.ShowAll
		o.Layout = lo
	}
	if o.ReconfigDuration == 0 {
		o.ReconfigDuration = reconfig.DefaultDuration
	}
	if o.TimeDivisor <= 0 {
		o.TimeDivisor = sim.DefaultTimeDivisor
	}
	if o.BoostedDivisor <= 0 {
		o.BoostedDivisor = sim.BoostedTimeDivisor
	}
}

type Option func(*Options)

// WithLayout sets brick size, height offset, layer limit and show-all.
func WithLayout(lo layout.Options) Option {
	return func(o *Options) { o.Layout = lo }
}

func WithReconfigDuration(d time.Duration) Option {
	return func(o *Options) { o.ReconfigDuration = d }
}

func WithTimeDivisor(normal, boosted float64) Option {
	return func(o *Options) {
		o.TimeDivisor = normal
		o.BoostedDivisor = boosted
	}
}

func WithMaxSubSteps(n int) Option {
	return func(o *Options) { o.MaxSubSteps = n }
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces all options.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}
