// Package lirc transmits infrared frames through the kernel lirc
// character device.
package lirc

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"accontrol/internal/ir"
)

const (
	lircSetSendMode      = 0x40046911
	lircSetSendCarrier   = 0x40046913
	lircSetSendDutyCycle = 0x40046915
	lircModePulse        = 0x2

	defaultCarrier   = 38000
	defaultDutyCycle = 50
)

// Coder turns a logical remote signal into raw pulse and space
// durations in microseconds, starting with a pulse.
type Coder interface {
	Supports(p ir.Protocol) bool
	Encode(sig ir.Signal) ([]uint32, error)
}

// Transmitter writes encoded frames to a lirc device. It implements
// ir.Emitter.
type Transmitter struct {
	device string
	coder  Coder
	logger *log.Logger

	mu sync.Mutex
}

// NewTransmitter creates a transmitter for the given device path, for
// example /dev/lirc0.
func NewTransmitter(device string, coder Coder, logger *log.Logger) *Transmitter {
	return &Transmitter{device: device, coder: coder, logger: logger}
}

// Supports reports whether the coder can produce frames for p.
func (t *Transmitter) Supports(p ir.Protocol) bool {
	return t.coder.Supports(p)
}

// Send encodes and transmits one signal. The lirc device accepts a
// whole frame per write, so the device is opened, configured and
// closed around each transmission.
func (t *Transmitter) Send(sig ir.Signal) error {
	pulses, err := t.coder.Encode(sig)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", sig.Protocol, err)
	}
	if len(pulses) == 0 {
		return fmt.Errorf("encode %s frame: empty pulse train", sig.Protocol)
	}
	// The device expects an odd count: pulse, space, ..., pulse.
	if len(pulses)%2 == 0 {
		pulses = pulses[:len(pulses)-1]
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.device, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.device, err)
	}
	defer f.Close()

	fd := f.Fd()
	if err := ioctlSetUint32(fd, lircSetSendMode, lircModePulse); err != nil {
		return fmt.Errorf("set send mode: %w", err)
	}
	if err := ioctlSetUint32(fd, lircSetSendCarrier, defaultCarrier); err != nil {
		return fmt.Errorf("set carrier: %w", err)
	}
	if err := ioctlSetUint32(fd, lircSetSendDutyCycle, defaultDutyCycle); err != nil {
		return fmt.Errorf("set duty cycle: %w", err)
	}

	buf := make([]byte, 4*len(pulses))
	for i, d := range pulses {
		binary.LittleEndian.PutUint32(buf[i*4:], d)
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("write pulse train: %w", err)
	}

	if t.logger != nil {
		t.logger.Printf("[IR] Sent %s frame, %d pulses", sig.Protocol, len(pulses))
	}
	return nil
}

func ioctlSetUint32(fd uintptr, req uint, value uint32) error {
	v := value
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return errno
	}
	return nil
}
