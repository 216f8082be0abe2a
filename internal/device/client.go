// internal/device/client.go
package device

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/codec"
	"github.com/hpmon/mblwz/internal/lwz"
	"github.com/hpmon/mblwz/internal/store"
)

// Conn is the bus boundary the client drives. Implementations own the
// underlying transport; the client decides when to (re)open it.
type Conn interface {
	Open() error
	IsOpen() bool
	Close() error
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error)
	WriteRegister(addr, value uint16) error
}

var (
	// ErrConnectionFailed means the bus was unreachable and the single
	// reconnect attempt did not succeed.
	ErrConnectionFailed = errors.New("device: connection failed")

	// ErrInvalidCode means the supplied command code did not match.
	ErrInvalidCode = errors.New("device: invalid command code")

	// ErrUnknownSetpoint means the named register is not writable.
	ErrUnknownSetpoint = errors.New("device: unknown or read-only setpoint")

	// ErrWriteRejected means the bus reported the write unsuccessful.
	ErrWriteRejected = errors.New("device: write rejected")
)

// Client translates named register operations into bus reads and writes.
// All bus access goes through one mutex, so a single client instance may be
// shared between the sampler and the command path; the reference deployment
// still uses two instances with independent connections.
type Client struct {
	mu   sync.Mutex
	conn Conn
	regs []lwz.Register
	log  *logrus.Entry
}

// New returns a client over the given connection, covering the full
// register catalog.
func New(conn Conn, log *logrus.Entry) *Client {
	return &Client{conn: conn, regs: lwz.All(), log: log}
}

// ensureOpen attempts exactly one connect if the connection is closed.
// No retry loop; a failure surfaces to the caller and the next scheduled
// operation tries again.
func (c *Client) ensureOpen() error {
	if c.conn.IsOpen() {
		return nil
	}
	if err := c.conn.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

// ReadAll reads every register in the catalog and returns a fully populated
// snapshot. A failed or unavailable read of one register resolves to its
// zero value and never aborts the others; only a failed reconnect makes the
// whole call fail.
func (c *Client) ReadAll() (store.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	snap := make(store.Snapshot, len(c.regs))
	for _, reg := range c.regs {
		snap[reg.Name] = c.readRegister(reg)
	}
	return snap, nil
}

// readRegister reads and decodes one register. Caller holds c.mu.
func (c *Client) readRegister(reg lwz.Register) float64 {
	var (
		words []uint16
		err   error
	)
	qty := uint16(reg.Words)

	switch reg.Table {
	case lwz.Holding:
		words, err = c.conn.ReadHoldingRegisters(reg.Address, qty)
	default:
		words, err = c.conn.ReadInputRegisters(reg.Address, qty)
	}
	if err != nil {
		c.log.WithError(err).WithField("register", reg.Name).Warn("register read failed")
		words = nil
	}

	raw := codec.DecodeUnsigned(words, reg.Words)
	if reg.Signed {
		signed, err := codec.DecodeSigned(raw, reg.Bits())
		if err != nil {
			c.log.WithError(err).WithField("register", reg.Name).Warn("register decode failed")
			return 0
		}
		raw = signed
	}
	return codec.ApplyScale(raw, reg.Scale)
}

// WriteSetpoint writes one value to a writable register. The code gate comes
// before any bus I/O, so a wrong code never touches the connection.
func (c *Client) WriteSetpoint(name string, value int, suppliedCode, expectedCode int) error {
	if suppliedCode != expectedCode {
		return ErrInvalidCode
	}

	reg, ok := lwz.Lookup(name)
	if !ok || !reg.Writable {
		return fmt.Errorf("%w: %s", ErrUnknownSetpoint, name)
	}
	if value < 0 || value > math.MaxUint16 {
		return fmt.Errorf("%w: value %d does not fit a register", ErrWriteRejected, value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureOpen(); err != nil {
		return err
	}
	if err := c.conn.WriteRegister(reg.Address, uint16(value)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteRejected, err)
	}
	return nil
}
