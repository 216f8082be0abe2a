// internal/codec/codec_test.go
package codec

import (
	"errors"
	"testing"
)

func TestDecodeUnsigned_SingleWord(t *testing.T) {
	if got := DecodeUnsigned([]uint16{0x0000}, 1); got != 0 {
		t.Fatalf("zero word: got=%d want=0", got)
	}
	if got := DecodeUnsigned([]uint16{0x00D5}, 1); got != 213 {
		t.Fatalf("plain word: got=%d want=213", got)
	}
	if got := DecodeUnsigned([]uint16{0xFFF6}, 1); got != 65526 {
		t.Fatalf("high word: got=%d want=65526", got)
	}
}

func TestDecodeUnsigned_Sentinel(t *testing.T) {
	if got := DecodeUnsigned([]uint16{NotAvailable}, 1); got != 0 {
		t.Fatalf("sentinel must decode to 0, got=%d", got)
	}
}

func TestDecodeUnsigned_MultiWord(t *testing.T) {
	// word[0] occupies the high bits
	if got := DecodeUnsigned([]uint16{0x0001, 0x0000}, 2); got != 0x10000 {
		t.Fatalf("two words: got=%d want=%d", got, 0x10000)
	}
	if got := DecodeUnsigned([]uint16{0x1234, 0x5678}, 2); got != 0x12345678 {
		t.Fatalf("two words: got=%#x want=0x12345678", got)
	}
}

func TestDecodeUnsigned_Unavailable(t *testing.T) {
	if got := DecodeUnsigned(nil, 1); got != 0 {
		t.Fatalf("nil words: got=%d want=0", got)
	}
	if got := DecodeUnsigned([]uint16{1, 2}, 1); got != 0 {
		t.Fatalf("wrong length: got=%d want=0", got)
	}
	if got := DecodeUnsigned([]uint16{1}, 2); got != 0 {
		t.Fatalf("short read: got=%d want=0", got)
	}
}

func TestDecodeSigned_RoundTrip16(t *testing.T) {
	// Every representable int16 must survive the encode/decode round trip.
	for want := int64(-32768); want <= 32767; want++ {
		raw := want
		if raw < 0 {
			raw += 1 << 16
		}
		got, err := DecodeSigned(raw, 16)
		if err != nil {
			t.Fatalf("DecodeSigned(%d, 16) err=%v", raw, err)
		}
		if got != want {
			t.Fatalf("round trip: got=%d want=%d", got, want)
		}
	}
}

func TestDecodeSigned_Width32(t *testing.T) {
	got, err := DecodeSigned(0xFFFFFFFF, 32)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != -1 {
		t.Fatalf("got=%d want=-1", got)
	}

	got, err = DecodeSigned(0x7FFFFFFF, 32)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != 0x7FFFFFFF {
		t.Fatalf("got=%d want=%d", got, int64(0x7FFFFFFF))
	}
}

func TestDecodeSigned_OutOfRange(t *testing.T) {
	if _, err := DecodeSigned(-1, 16); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("negative input: err=%v want ErrOutOfRange", err)
	}
	if _, err := DecodeSigned(1<<16, 16); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("oversized input: err=%v want ErrOutOfRange", err)
	}
}

func TestDecodeSigned_BadWidth(t *testing.T) {
	if _, err := DecodeSigned(0, 0); err == nil {
		t.Fatalf("width 0 must fail")
	}
	if _, err := DecodeSigned(0, 8); err == nil {
		t.Fatalf("width 8 must fail")
	}
	if _, err := DecodeSigned(0, 64); err == nil {
		t.Fatalf("width 64 must fail")
	}
}

func TestApplyScale(t *testing.T) {
	if got := ApplyScale(-10, 0.1); got != -1.0 {
		t.Fatalf("got=%v want=-1.0", got)
	}
	if got := ApplyScale(213, 0.1); got != 21.3 {
		t.Fatalf("got=%v want=21.3", got)
	}
	if got := ApplyScale(3, 1); got != 3 {
		t.Fatalf("got=%v want=3", got)
	}
}

func TestOutsideTemperatureEndToEnd(t *testing.T) {
	// 0xFFF6 = 65526 -> two's complement -10 -> scale 0.1 -> -1.0
	raw := DecodeUnsigned([]uint16{0xFFF6}, 1)
	signed, err := DecodeSigned(raw, 16)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := ApplyScale(signed, 0.1); got != -1.0 {
		t.Fatalf("got=%v want=-1.0", got)
	}
}
