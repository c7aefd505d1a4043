package captive

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
)

// buildQuery assembles a single-question A query for the given name.
func buildQuery(id uint16, name string) []byte {
	q := make([]byte, 12)
	binary.BigEndian.PutUint16(q[0:2], id)
	q[2] = 0x01 // recursion desired
	binary.BigEndian.PutUint16(q[4:6], 1)

	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			q = append(q, byte(i-start))
			q = append(q, name[start:i]...)
			start = i + 1
		}
	}
	q = append(q, 0x00)
	q = append(q, 0x00, 0x01, 0x00, 0x01) // QTYPE A, QCLASS IN
	return q
}

func TestReplyAnswersWithAPAddress(t *testing.T) {
	ip := net.ParseIP("10.42.0.1")
	query := buildQuery(0x1234, "captive.example.com")

	reply := Reply(query, ip)
	if reply == nil {
		t.Fatal("Expected a reply for a plain A query")
	}

	if got := binary.BigEndian.Uint16(reply[0:2]); got != 0x1234 {
		t.Errorf("Expected query ID echoed, got %#x", got)
	}
	if reply[2]&0x80 == 0 {
		t.Error("Expected response flag set")
	}
	if got := binary.BigEndian.Uint16(reply[6:8]); got != 1 {
		t.Errorf("Expected one answer, got %d", got)
	}

	// The answer record is appended after the echoed question and ends
	// with the AP address.
	if !bytes.HasSuffix(reply, ip.To4()) {
		t.Errorf("Expected reply to end with %v, got %v", ip.To4(), reply[len(reply)-4:])
	}
	// Name pointer back to the question.
	answer := reply[len(query):]
	if answer[0] != 0xC0 || answer[1] != 12 {
		t.Errorf("Expected compressed name pointer, got %#x %#x", answer[0], answer[1])
	}
}

func TestReplyDifferentNamesSameAddress(t *testing.T) {
	ip := net.ParseIP("192.168.4.1")
	for _, name := range []string{"a.com", "connectivitycheck.gstatic.com", "x"} {
		reply := Reply(buildQuery(1, name), ip)
		if reply == nil {
			t.Fatalf("Expected a reply for %q", name)
		}
		if !bytes.HasSuffix(reply, ip.To4()) {
			t.Errorf("Expected %q to resolve to the AP address", name)
		}
	}
}

func TestReplyDropsMalformedPackets(t *testing.T) {
	ip := net.ParseIP("10.0.0.1")

	tests := []struct {
		name  string
		query []byte
	}{
		{"too short", []byte{0x00, 0x01, 0x02}},
		{"empty", nil},
		{"response packet", func() []byte {
			q := buildQuery(7, "a.com")
			q[2] |= 0x80
			return q
		}()},
		{"zero questions", func() []byte {
			q := buildQuery(7, "a.com")
			binary.BigEndian.PutUint16(q[4:6], 0)
			return q
		}()},
		{"truncated question", buildQuery(7, "a.com")[:14]},
	}

	for _, tt := range tests {
		if got := Reply(tt.query, ip); got != nil {
			t.Errorf("%s: expected packet to be dropped, got %d byte reply", tt.name, len(got))
		}
	}
}

func TestNewResponderRejectsBadAddress(t *testing.T) {
	if _, err := NewResponder("not-an-ip", nil); err == nil {
		t.Error("Expected error for invalid address")
	}
	if _, err := NewResponder("::1", nil); err == nil {
		t.Error("Expected error for non-IPv4 address")
	}
}
