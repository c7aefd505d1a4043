package ir

import (
	"fmt"
	"log"

	"accontrol/internal/ac"
)

// StateStore is the slice of the persistent store the remote needs: the
// mirrored AC state and the configured protocol code.
type StateStore interface {
	State() ac.State
	SetState(ac.State) error
	ProtocolCode() string
}

// Reporter publishes the outcome of a command on the bus. Implementations
// are best-effort: a failed publish must not fail the command.
type Reporter interface {
	ReportStatus()
	ReportTelemetry()
	ReportError(errType, message string)
}

// Remote executes inbound commands against the emitter. It owns the
// ordering invariant of the command pipeline: the mirrored AC state is
// updated and persisted only after the emitter confirms the transmission.
type Remote struct {
	store    StateStore
	emitter  Emitter
	reporter Reporter
	logger   *log.Logger
}

// NewRemote creates a command remote.
func NewRemote(store StateStore, emitter Emitter, reporter Reporter, logger *log.Logger) *Remote {
	return &Remote{
		store:    store,
		emitter:  emitter,
		reporter: reporter,
		logger:   logger,
	}
}

// Handle normalizes and transmits one command. On success the AC state is
// persisted and status plus telemetry are published; on any failure the
// state is left untouched and an error event is published instead.
func (r *Remote) Handle(kind CommandKind, value string) error {
	proto, err := ParseProtocol(r.store.ProtocolCode())
	if err != nil {
		r.fail("IR", err.Error())
		return err
	}
	if !r.emitter.Supports(proto) {
		err := fmt.Errorf("unsupported protocol: %s", proto)
		r.fail("IR", err.Error())
		return err
	}

	sig, err := Normalize(kind, value, r.store.State(), proto)
	if err != nil {
		r.fail("IR", err.Error())
		return err
	}

	if r.logger != nil {
		r.logger.Printf("[IR] Sending signal: command=%s value=%s protocol=%s", kind, value, proto)
	}
	if err := r.emitter.Send(sig); err != nil {
		r.fail("IR", fmt.Sprintf("failed to send IR signal: %v", err))
		return fmt.Errorf("send IR signal: %w", err)
	}

	if err := r.store.SetState(sig.State); err != nil && r.logger != nil {
		// The transmission happened; a persistence failure only costs us
		// the mirror after the next reboot.
		r.logger.Printf("[IR] Failed to persist AC state: %v", err)
	}

	if r.reporter != nil {
		r.reporter.ReportStatus()
		r.reporter.ReportTelemetry()
	}
	return nil
}

func (r *Remote) fail(errType, message string) {
	if r.logger != nil {
		r.logger.Printf("[IR] Error: %s", message)
	}
	if r.reporter != nil {
		r.reporter.ReportError(errType, message)
	}
}
