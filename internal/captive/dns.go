// Package captive runs the wildcard name resolver used in provisioning
// mode: every DNS query gets answered with the access point's address so
// any page a client opens lands on the setup UI.
package captive

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"sync"
)

const (
	dnsPort       = 53
	headerLen     = 12
	answerTTL     = 60
	maxPacketSize = 512
)

// Responder is the wildcard DNS responder.
type Responder struct {
	ip     net.IP
	logger *log.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// NewResponder creates a responder that resolves everything to ip.
func NewResponder(ip string, logger *log.Logger) (*Responder, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return nil, fmt.Errorf("invalid responder address: %q", ip)
	}
	return &Responder{ip: parsed.To4(), logger: logger}, nil
}

// Start binds the DNS port and serves queries until Stop.
func (r *Responder) Start() error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: dnsPort})
	if err != nil {
		return fmt.Errorf("listen on DNS port: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.closed = false
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Printf("[DNS] Captive resolver answering everything with %s", r.ip)
	}

	go r.serve(conn)
	return nil
}

// Stop closes the responder.
func (r *Responder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.closed = true
		r.conn.Close()
		r.conn = nil
	}
}

func (r *Responder) serve(conn *net.UDPConn) {
	buf := make([]byte, maxPacketSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if !closed && r.logger != nil {
				r.logger.Printf("[DNS] Read failed: %v", err)
			}
			return
		}

		reply := Reply(buf[:n], r.ip)
		if reply == nil {
			continue
		}
		if _, err := conn.WriteToUDP(reply, addr); err != nil && r.logger != nil {
			r.logger.Printf("[DNS] Write failed: %v", err)
		}
	}
}

// Reply builds the wildcard answer for one DNS query packet: the question
// is echoed back with a single A record pointing at ip. Packets that are
// not a plain one-question query are dropped.
func Reply(query []byte, ip net.IP) []byte {
	if len(query) < headerLen {
		return nil
	}
	// Only queries (QR bit clear) with exactly one question.
	if query[2]&0x80 != 0 || binary.BigEndian.Uint16(query[4:6]) != 1 {
		return nil
	}

	// Walk the question name labels to find the end of the question.
	pos := headerLen
	for {
		if pos >= len(query) {
			return nil
		}
		labelLen := int(query[pos])
		if labelLen == 0 {
			pos++
			break
		}
		// Compressed names do not appear in questions.
		if labelLen&0xC0 != 0 {
			return nil
		}
		pos += labelLen + 1
	}
	// QTYPE and QCLASS.
	pos += 4
	if pos > len(query) {
		return nil
	}

	reply := make([]byte, 0, pos+16)
	reply = append(reply, query[:pos]...)

	// Header: response, recursion available, no error; one answer.
	reply[2] = 0x81
	reply[3] = 0x80
	binary.BigEndian.PutUint16(reply[6:8], 1)  // ANCOUNT
	binary.BigEndian.PutUint16(reply[8:10], 0) // NSCOUNT
	binary.BigEndian.PutUint16(reply[10:12], 0)

	// Answer: pointer to the question name, type A, class IN.
	reply = append(reply, 0xC0, headerLen)
	reply = append(reply, 0x00, 0x01, 0x00, 0x01)
	reply = binary.BigEndian.AppendUint32(reply, answerTTL)
	reply = append(reply, 0x00, 0x04)
	reply = append(reply, ip.To4()...)

	return reply
}
