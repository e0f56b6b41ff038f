package input

import (
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

// Console collects a typed command line from text and key events.
// It opens on '/' and submits on Enter.
type Console struct {
	open bool
	buf  strings.Builder
}

// Open reports whether the console is collecting text.
func (c *Console) Open() bool {
	return c.open
}

// Text returns the line typed so far.
func (c *Console) Text() string {
	return c.buf.String()
}

// Handle consumes one event. submitted is true when Enter finishes a
// non-empty line. consumed reports that the event belonged to the console;
// every keyboard event is consumed while it is open.
func (c *Console) Handle(e Event) (line string, submitted bool, consumed bool) {
	switch e.Type {
	case EventText:
		if !c.open {
			if strings.HasPrefix(e.Text, "/") {
				c.open = true
				c.buf.Reset()
				c.buf.WriteString(e.Text)
				return "", false, true
			}
			return "", false, false
		}
		c.buf.WriteString(e.Text)
		return "", false, true

	case EventKeyDown:
		if !c.open {
			return "", false, false
		}
		switch e.Key {
		case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
			line = strings.TrimSpace(c.buf.String())
			c.close()
			return line, line != "", true
		case sdl.SCANCODE_ESCAPE:
			c.close()
		case sdl.SCANCODE_BACKSPACE:
			s := []rune(c.buf.String())
			c.buf.Reset()
			if len(s) > 0 {
				c.buf.WriteString(string(s[:len(s)-1]))
			}
			if c.buf.Len() == 0 {
				c.close()
			}
		}
		return "", false, true

	case EventKeyUp:
		return "", false, c.open
	}
	return "", false, false
}

func (c *Console) close() {
	c.open = false
	c.buf.Reset()
}
