package components

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// CounterFPS is the frame rate counters are stepped at.
const CounterFPS = 30

// CounterFrame is the interval between counter steps.
const CounterFrame = time.Second / CounterFPS

// Counter animates a headline figure counting up to its target on a
// critically damped spring.
type Counter struct {
	spring   harmonica.Spring
	target   float64
	value    float64
	velocity float64
}

// NewCounter returns a counter resting at zero.
func NewCounter() Counter {
	return Counter{spring: harmonica.NewSpring(harmonica.FPS(CounterFPS), 6.0, 1.0)}
}

// SetTarget starts animating from the current value toward target.
func (c *Counter) SetTarget(target float64) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		target = 0
	}
	c.target = target
}

// Jump sets the value to target with no animation.
func (c *Counter) Jump(target float64) {
	c.SetTarget(target)
	c.value = c.target
	c.velocity = 0
}

// Step advances one frame and reports whether the counter is still moving.
// The value snaps to the target once it is within half a cent.
func (c *Counter) Step() bool {
	if c.Done() {
		return false
	}
	c.value, c.velocity = c.spring.Update(c.value, c.velocity, c.target)
	if math.Abs(c.target-c.value) < 0.005 && math.Abs(c.velocity) < 0.05 {
		c.value = c.target
		c.velocity = 0
		return false
	}
	return true
}

// Done reports whether the counter rests on its target.
func (c Counter) Done() bool { return c.value == c.target && c.velocity == 0 }

// Value is the current displayed figure.
func (c Counter) Value() float64 { return c.value }
