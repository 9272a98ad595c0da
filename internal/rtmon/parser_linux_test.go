//go:build linux

package rtmon

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"testing"

	"golang.org/x/sys/unix"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// testParser returns a parser whose resolver always maps the target
// interface to the given index.
func testParser(targetIndex int32) *parser {
	res := newResolver("wlan0", discardLogger())
	res.lookup = func(string) (int32, error) { return targetIndex, nil }
	return &parser{res: res, logger: discardLogger()}
}

// linkMsg builds one well-formed RTM_NEWLINK netlink message.
func linkMsg(msgType uint16, index int32, flags uint32) []byte {
	msg := make([]byte, unix.NLMSG_HDRLEN+unix.SizeofIfInfomsg)
	binary.NativeEndian.PutUint32(msg[0:4], uint32(len(msg)))
	binary.NativeEndian.PutUint16(msg[4:6], msgType)
	binary.NativeEndian.PutUint32(msg[unix.NLMSG_HDRLEN+ifiIndexOff:], uint32(index))
	binary.NativeEndian.PutUint32(msg[unix.NLMSG_HDRLEN+ifiFlagsOff:], flags)
	return msg
}

func TestParse_RelevantMessage(t *testing.T) {
	p := testParser(7)

	ev, ok := p.parse(linkMsg(unix.RTM_NEWLINK, 7, unix.IFF_UP|unix.IFF_RUNNING))
	if !ok {
		t.Fatal("parse returned no event for a relevant message")
	}
	if ev.Index != 7 {
		t.Errorf("Index = %d, want 7", ev.Index)
	}
	if ev.Flags&unix.IFF_UP == 0 {
		t.Errorf("Flags = %#x, want IFF_UP set", ev.Flags)
	}
}

func TestParse_TruncatedBuffer(t *testing.T) {
	p := testParser(7)

	// Shorter than the fixed netlink header: must skip, not crash.
	if _, ok := p.parse([]byte{0x01, 0x02, 0x03}); ok {
		t.Error("parse produced an event from a truncated buffer")
	}
	if _, ok := p.parse(nil); ok {
		t.Error("parse produced an event from an empty buffer")
	}
}

func TestParse_LengthDisagreesWithRead(t *testing.T) {
	p := testParser(7)

	msg := linkMsg(unix.RTM_NEWLINK, 7, unix.IFF_UP)

	// Self-reported length larger than the bytes actually read.
	binary.NativeEndian.PutUint32(msg[0:4], uint32(len(msg)+8))
	if _, ok := p.parse(msg); ok {
		t.Error("parse produced an event despite an over-long declared length")
	}

	// Self-reported length shorter than the header itself.
	binary.NativeEndian.PutUint32(msg[0:4], 4)
	if _, ok := p.parse(msg); ok {
		t.Error("parse produced an event despite an under-long declared length")
	}
}

func TestParse_IgnoresOtherMessageTypes(t *testing.T) {
	p := testParser(7)

	if _, ok := p.parse(linkMsg(unix.RTM_NEWROUTE, 7, unix.IFF_UP)); ok {
		t.Error("parse produced an event for a non-link message type")
	}
}

func TestParse_IgnoresOtherInterfaces(t *testing.T) {
	p := testParser(7)

	if _, ok := p.parse(linkMsg(unix.RTM_NEWLINK, 99, unix.IFF_UP)); ok {
		t.Error("parse produced an event for a different interface index")
	}
}

func TestParse_ShortPayload(t *testing.T) {
	p := testParser(7)

	// Header claims a valid length but the ifinfomsg body is truncated.
	msg := make([]byte, unix.NLMSG_HDRLEN+4)
	binary.NativeEndian.PutUint32(msg[0:4], uint32(len(msg)))
	binary.NativeEndian.PutUint16(msg[4:6], unix.RTM_NEWLINK)
	if _, ok := p.parse(msg); ok {
		t.Error("parse produced an event from a truncated ifinfomsg")
	}
}

func TestParse_BatchLastWriteWins(t *testing.T) {
	p := testParser(7)

	batch := append(linkMsg(unix.RTM_NEWLINK, 7, unix.IFF_UP), linkMsg(unix.RTM_NEWLINK, 7, 0)...)
	ev, ok := p.parse(batch)
	if !ok {
		t.Fatal("parse returned no event for a relevant batch")
	}
	if ev.Flags != 0 {
		t.Errorf("Flags = %#x, want 0 (last message in batch wins)", ev.Flags)
	}
}

func TestParse_BatchSkipsIrrelevant(t *testing.T) {
	p := testParser(7)

	batch := append(linkMsg(unix.RTM_NEWLINK, 99, 0), linkMsg(unix.RTM_NEWLINK, 7, unix.IFF_UP)...)
	ev, ok := p.parse(batch)
	if !ok {
		t.Fatal("parse returned no event for a batch containing a relevant message")
	}
	if ev.Flags&unix.IFF_UP == 0 {
		t.Errorf("Flags = %#x, want IFF_UP set", ev.Flags)
	}
}

func TestResolver_EscalatesAfterConsecutiveFailures(t *testing.T) {
	res := newResolver("wlan0", discardLogger())
	res.lookup = func(string) (int32, error) { return 0, errors.New("no such interface") }

	for i := 0; i < escalateAfter+5; i++ {
		if _, ok := res.index(); ok {
			t.Fatal("index resolved despite failing lookup")
		}
	}
	if res.failures != escalateAfter+5 {
		t.Errorf("failures = %d, want %d", res.failures, escalateAfter+5)
	}

	// A success resets the failure run.
	res.lookup = func(string) (int32, error) { return 3, nil }
	idx, ok := res.index()
	if !ok || idx != 3 {
		t.Fatalf("index() = (%d, %v), want (3, true)", idx, ok)
	}
	if res.failures != 0 {
		t.Errorf("failures = %d after success, want 0", res.failures)
	}
}

func TestParse_UnresolvableTargetSkips(t *testing.T) {
	res := newResolver("wlan0", discardLogger())
	res.lookup = func(string) (int32, error) { return 0, errors.New("no such interface") }
	p := &parser{res: res, logger: discardLogger()}

	if _, ok := p.parse(linkMsg(unix.RTM_NEWLINK, 7, unix.IFF_UP)); ok {
		t.Error("parse produced an event while the target was unresolvable")
	}
}
