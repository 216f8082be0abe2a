// internal/command/gateway.go
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/device"
	"github.com/hpmon/mblwz/internal/lwz"
)

// Setter is the slice of the device client the gateway needs.
type Setter interface {
	WriteSetpoint(name string, value int, suppliedCode, expectedCode int) error
}

// Result is the serializable outcome returned to remote callers. Commands
// never raise across the remote boundary.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Gateway validates the shared command code and forwards accepted setpoint
// writes to the device.
type Gateway struct {
	setter Setter
	code   int
	log    *logrus.Entry
}

// New creates a gateway bound to the configured command code.
func New(setter Setter, code int, log *logrus.Entry) *Gateway {
	return &Gateway{setter: setter, code: code, log: log}
}

// SetAiringLevelDay sets the daytime airing level.
func (g *Gateway) SetAiringLevelDay(level string, code int) Result {
	return g.set(lwz.AiringLevelDay, level, code)
}

// SetAiringLevelNight sets the nighttime airing level.
func (g *Gateway) SetAiringLevelNight(level string, code int) Result {
	return g.set(lwz.AiringLevelNight, level, code)
}

func (g *Gateway) set(register, level string, code int) Result {
	// Level may arrive as text from a remote caller.
	value, err := strconv.Atoi(strings.TrimSpace(level))
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("invalid airing level %q", level)}
	}

	err = g.setter.WriteSetpoint(register, value, code, g.code)
	switch {
	case err == nil:
		return Result{Success: true, Message: "Setting airing level successful"}
	case errors.Is(err, device.ErrInvalidCode):
		return Result{Success: false, Message: "invalid command code"}
	case errors.Is(err, device.ErrConnectionFailed):
		g.log.WithError(err).WithField("register", register).Warn("setpoint write failed")
		return Result{Success: false, Message: "heat pump not reachable"}
	default:
		g.log.WithError(err).WithField("register", register).Warn("setpoint write failed")
		return Result{Success: false, Message: "Setting airing level failed"}
	}
}
