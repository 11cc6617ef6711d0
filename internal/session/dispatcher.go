package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/posbridge/internal/events"
	"github.com/nerrad567/posbridge/internal/hardware"
	"github.com/nerrad567/posbridge/internal/protocol"
)

// Devices resolves device ids. A miss is reported as false, not as an error.
type Devices interface {
	GetPrinter(id string) (hardware.Printer, bool)
	GetDrawer(id string) (hardware.Drawer, bool)
	GetDisplay(id string) (hardware.Display, bool)
}

// Validator checks a presented token against the shared secret.
type Validator interface {
	Validate(token string) bool
}

// Emitter receives the outcome of every handled message.
type Emitter interface {
	Emit(ev events.CommandEvent)
}

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopEmitter struct{}

func (noopEmitter) Emit(events.CommandEvent) {}

// commandInvalid labels messages that could not be decoded.
const commandInvalid = "invalid"

// Dispatcher runs the per-connection protocol state machine.
//
// One Dispatcher serves every connection; per-connection state lives in the
// Session passed to Handle. The device set and the gate are shared and
// read-only.
type Dispatcher struct {
	devices Devices
	gate    Validator
	emitter Emitter
	logger  Logger
}

// NewDispatcher creates a dispatcher over the given devices and gate.
func NewDispatcher(devices Devices, gate Validator) *Dispatcher {
	return &Dispatcher{
		devices: devices,
		gate:    gate,
		emitter: noopEmitter{},
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetEmitter sets where command outcomes are sent.
func (d *Dispatcher) SetEmitter(emitter Emitter) {
	d.emitter = emitter
}

// Handle processes one inbound message for sess and returns its response.
//
// Decode failures and every command-level failure become error responses;
// Handle itself never fails. A panic inside an adapter is recovered and
// reported to the client as an internal error.
func (d *Dispatcher) Handle(ctx context.Context, sess *Session, raw []byte) (resp protocol.Response) {
	start := time.Now()
	command, deviceID := commandInvalid, ""

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic while handling command",
				"connection_id", sess.ID(),
				"command", command,
				"device_id", deviceID,
				"panic", fmt.Sprint(r),
			)
			resp = responseFor(deviceID, ErrInternal)
		}
		d.emitter.Emit(events.CommandEvent{
			ConnectionID: sess.ID(),
			Command:      command,
			DeviceID:     deviceID,
			Status:       string(resp.Status),
			Message:      resp.Message,
			Duration:     time.Since(start),
		})
	}()

	cmd, err := protocol.Decode(raw)
	if err != nil {
		d.logger.Warn("invalid message", "connection_id", sess.ID(), "error", err)
		return protocol.InvalidJSON(err)
	}
	command = string(cmd.Type())
	deviceID, _ = protocol.DeviceOf(cmd)

	if auth, ok := cmd.(protocol.Auth); ok {
		if err := d.authenticate(sess, auth); err != nil {
			d.logger.Warn("authentication failed", "connection_id", sess.ID(), "error", err)
			return responseFor("", err)
		}
		d.logger.Info("client authenticated", "connection_id", sess.ID())
		return protocol.Authenticated()
	}

	if !sess.authenticated {
		d.logger.Warn("command rejected before authentication",
			"connection_id", sess.ID(),
			"command", command,
		)
		return responseFor(deviceID, ErrAuthRequired)
	}

	err = d.execute(ctx, cmd)
	switch {
	case err == nil:
		d.logger.Debug("command completed", "connection_id", sess.ID(), "command", command, "device_id", deviceID)
	case errors.Is(err, ErrDeviceNotFound):
		d.logger.Warn("device not found", "connection_id", sess.ID(), "command", command, "device_id", deviceID)
	default:
		d.logger.Warn("command failed",
			"connection_id", sess.ID(),
			"command", command,
			"device_id", deviceID,
			"error", err,
		)
	}
	return responseFor(deviceID, err)
}

// responseFor maps a dispatch outcome to its wire response. Auth outcomes
// never carry a device id; adapter errors pass their message through.
func responseFor(deviceID string, err error) protocol.Response {
	switch {
	case err == nil:
		return protocol.OK(deviceID)
	case errors.Is(err, ErrAuthRequired):
		return protocol.Error("", protocol.MsgAuthRequired)
	case errors.Is(err, ErrInvalidToken):
		return protocol.Error("", protocol.MsgInvalidToken)
	case errors.Is(err, ErrDeviceNotFound):
		return protocol.Error(deviceID, protocol.MsgDeviceNotFound)
	case errors.Is(err, ErrInternal):
		return protocol.Error(deviceID, msgInternal)
	default:
		return protocol.Error(deviceID, err.Error())
	}
}

// authenticate applies an auth command. A wrong token never revokes an
// earlier successful authentication.
func (d *Dispatcher) authenticate(sess *Session, auth protocol.Auth) error {
	if !d.gate.Validate(auth.Token) {
		return ErrInvalidToken
	}
	sess.authenticated = true
	return nil
}

// execute resolves the target device and performs the operation.
func (d *Dispatcher) execute(ctx context.Context, cmd protocol.Command) error {
	switch c := cmd.(type) {
	case protocol.Print:
		printer, ok := d.devices.GetPrinter(c.DeviceID)
		if !ok {
			return ErrDeviceNotFound
		}
		return printer.PrintRaw(ctx, hardware.BuildPrintJob(c.Text, c.AutoCut))

	case protocol.Cut:
		printer, ok := d.devices.GetPrinter(c.DeviceID)
		if !ok {
			return ErrDeviceNotFound
		}
		return printer.PrintRaw(ctx, hardware.FeedAndCut)

	case protocol.OpenDrawer:
		drawer, ok := d.devices.GetDrawer(c.DeviceID)
		if !ok {
			return ErrDeviceNotFound
		}
		return drawer.Open(ctx)

	case protocol.DisplayUpdate:
		display, ok := d.devices.GetDisplay(c.DeviceID)
		if !ok {
			return ErrDeviceNotFound
		}
		return display.ShowText(ctx, c.Line1, c.Line2)

	case protocol.DisplayClear:
		display, ok := d.devices.GetDisplay(c.DeviceID)
		if !ok {
			return ErrDeviceNotFound
		}
		return display.Clear(ctx)

	default:
		return fmt.Errorf("%w: unhandled command %s", ErrInternal, cmd.Type())
	}
}
