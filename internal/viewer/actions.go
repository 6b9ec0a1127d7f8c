package viewer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Action is a user command independent of the input device.
type Action int

const (
	ActionNone Action = iota
	// ActionRebuild drops the tower and builds it again at rest.
	ActionRebuild
	ActionTogglePhysics
	// ActionNextView reconfigures to the next metric.
	ActionNextView
	// ActionFlipOrder reconfigures to the reverse order of the same metric.
	ActionFlipOrder
	ActionSlowMotionOn
	ActionSlowMotionOff
)

func (a Action) String() string {
	switch a {
	case ActionRebuild:
		return "rebuild"
	case ActionTogglePhysics:
		return "toggle-physics"
	case ActionNextView:
		return "next-view"
	case ActionFlipOrder:
		return "flip-order"
	case ActionSlowMotionOn:
		return "slowmo-on"
	case ActionSlowMotionOff:
		return "slowmo-off"
	default:
		return "none"
	}
}

// Controller applies actions to an engine and keeps the last status line.
type Controller struct {
	eng    *tower.Engine
	logger *log.Logger
	status string
}

func NewController(eng *tower.Engine, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{eng: eng, logger: logger}
}

// Status is the message of the last applied action.
func (c *Controller) Status() string { return c.status }

// Apply performs a. Refused reconfigurations leave the tower as it is.
func (c *Controller) Apply(a Action) {
	switch a {
	case ActionRebuild:
		if err := c.eng.Build(c.eng.Key()); err != nil {
			c.setStatus("rebuild refused: %s", err)
			return
		}
		c.setStatus("rebuilt %s", c.eng.Key())
	case ActionTogglePhysics:
		if c.eng.TogglePhysics() {
			c.setStatus("physics on")
		} else {
			c.setStatus("physics off")
		}
	case ActionNextView:
		c.reconfigure(NextView(c.eng.Key()))
	case ActionFlipOrder:
		k := c.eng.Key()
		k.Ascending = !k.Ascending
		c.reconfigure(k)
	case ActionSlowMotionOn:
		c.eng.SetSlowMotion(true)
	case ActionSlowMotionOff:
		c.eng.SetSlowMotion(false)
	}
}

func (c *Controller) reconfigure(k layout.SortKey) {
	if !c.eng.Reconfigure(k) {
		c.setStatus("busy: %s still running", c.eng.Phase())
		return
	}
	c.setStatus("reconfiguring to %s", k)
}

func (c *Controller) setStatus(format string, args ...any) {
	c.status = fmt.Sprintf(format, args...)
	c.logger.Debug(c.status)
}

// NextView cycles through the metrics, keeping the direction.
func NextView(k layout.SortKey) layout.SortKey {
	for i, m := range dataset.Metrics {
		if m == k.Metric {
			k.Metric = dataset.Metrics[(i+1)%len(dataset.Metrics)]
			return k
		}
	}
	k.Metric = dataset.Metrics[0]
	return k
}
