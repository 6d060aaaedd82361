// Package input turns raw terminal bytes into game keys.
package input

import (
	"bufio"
	"io"

	"github.com/tomz197/flak/internal/world"
)

// Keys is everything pressed since the previous read. Each press is acted on
// once; nothing is treated as held.
type Keys struct {
	Quit    bool
	Fire    int           // Number of fire presses
	Aim     world.Heading // Last aim key, valid only if Aimed
	Aimed   bool
	Enter   bool
	Number  int    // Last digit pressed, -1 if none
	Pressed []byte // Raw bytes, for "press any key" screens
	Closed  bool   // The input source is gone
}

// Any reports whether any byte arrived.
func (k Keys) Any() bool {
	return len(k.Pressed) > 0
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains all available bytes from the stream without blocking and
// parses them.
func (s *Stream) Read() Keys {
	var buf []byte
	if !s.closed {
	drain:
		for {
			select {
			case b, ok := <-s.ch:
				if !ok {
					s.closed = true
					break drain
				}
				buf = append(buf, b)
			default:
				break drain
			}
		}
	}
	keys := Parse(buf)
	keys.Closed = s.closed
	return keys
}

// Parse interprets a batch of bytes. Arrow keys arrive as ESC [ A..D.
func Parse(buf []byte) Keys {
	keys := Keys{Number: -1, Pressed: buf}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				keys.aim(world.HeadingUp)
			case 'C':
				keys.aim(world.HeadingRight)
			case 'D':
				keys.aim(world.HeadingLeft)
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
			keys.Quit = true
		case 'w', 'W':
			keys.aim(world.HeadingUp)
		case 'a', 'A':
			keys.aim(world.HeadingLeft)
		case 'd', 'D':
			keys.aim(world.HeadingRight)
		case 'z', 'Z':
			keys.aim(world.HeadingUpLeft)
		case 'c', 'C':
			keys.aim(world.HeadingUpRight)
		case ' ':
			keys.Fire++
		case '\n', '\r':
			keys.Enter = true
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			keys.Number = int(b - '0')
		}
	}
	return keys
}

func (k *Keys) aim(h world.Heading) {
	k.Aim = h
	k.Aimed = true
}
