// internal/device/modbus/conn.go
package modbus

import (
	"errors"
	"fmt"
	"time"

	gomodbus "github.com/goburrow/modbus"
)

// Conn implements device.Conn over Modbus TCP using goburrow.
type Conn struct {
	handler *gomodbus.TCPClientHandler
	client  gomodbus.Client
	open    bool
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// New creates an unconnected Modbus TCP conn. The device client opens it on
// first use.
func New(cfg Config) (*Conn, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus conn: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	handler := gomodbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID

	return &Conn{
		handler: handler,
		client:  gomodbus.NewClient(handler),
	}, nil
}

// Open dials the device. One attempt, no retries.
func (c *Conn) Open() error {
	if err := c.handler.Connect(); err != nil {
		c.open = false
		return err
	}
	c.open = true
	return nil
}

// IsOpen reports whether the last transport state was healthy.
func (c *Conn) IsOpen() bool {
	return c.open
}

// Close closes the TCP connection.
func (c *Conn) Close() error {
	c.open = false
	return c.handler.Close()
}

func (c *Conn) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	raw, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, c.fail(err)
	}
	return unpackWords(raw, qty)
}

func (c *Conn) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, c.fail(err)
	}
	return unpackWords(raw, qty)
}

func (c *Conn) WriteRegister(addr, value uint16) error {
	_, err := c.client.WriteSingleRegister(addr, value)
	return c.fail(err)
}

// fail classifies an operation error. A Modbus exception means the device
// answered and the transport is still good; anything else closes the
// connection so the next operation reconnects.
func (c *Conn) fail(err error) error {
	if err == nil {
		return nil
	}

	var me *gomodbus.ModbusError
	if errors.As(err, &me) {
		return err
	}

	c.open = false
	_ = c.handler.Close()
	return err
}

// unpackWords converts a big-endian register payload into uint16 words.
func unpackWords(raw []byte, qty uint16) ([]uint16, error) {
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("modbus conn: short response: %d bytes for %d registers", len(raw), qty)
	}
	out := make([]uint16, qty)
	for i := range out {
		out[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return out, nil
}
