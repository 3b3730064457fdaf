package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/voldiff/internal/engine/input"
)

var keymap = map[sdl.Keycode]input.Key{
	sdl.K_ESCAPE:   input.KeyEscape,
	sdl.K_TAB:      input.KeyTab,
	sdl.K_SPACE:    input.KeySpace,
	sdl.K_1:        input.Key1,
	sdl.K_2:        input.Key2,
	sdl.K_3:        input.Key3,
	sdl.K_e:        input.KeyE,
	sdl.K_g:        input.KeyG,
	sdl.K_b:        input.KeyB,
	sdl.K_r:        input.KeyR,
	sdl.K_i:        input.KeyI,
	sdl.K_EQUALS:   input.KeyPlus,
	sdl.K_PLUS:     input.KeyPlus,
	sdl.K_KP_PLUS:  input.KeyPlus,
	sdl.K_MINUS:    input.KeyMinus,
	sdl.K_KP_MINUS: input.KeyMinus,
	sdl.K_F12:      input.KeyF12,
}

// PollEvents drains the SDL queue into in. Sizes and mouse positions are
// reported in drawable pixels.
func (w *Window) PollEvents(in *input.Input) {
	in.Begin()
	toPixels := w.pointScale()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				dw, dh := w.DrawableSize()
				in.Push(input.Event{Type: input.EventWindowResize, Width: dw, Height: dh})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			key, ok := keymap[e.Keysym.Sym]
			if !ok {
				continue
			}
			typ := input.EventKeyUp
			if e.Type == sdl.KEYDOWN {
				typ = input.EventKeyDown
			}
			in.Push(input.Event{Type: typ, Key: key})

		case *sdl.MouseMotionEvent:
			x, y := toPixels(e.X, e.Y)
			in.Push(input.Event{Type: input.EventMouseMove, MouseX: x, MouseY: y})

		case *sdl.MouseButtonEvent:
			typ := input.EventMouseUp
			if e.Type == sdl.MOUSEBUTTONDOWN {
				typ = input.EventMouseDown
			}
			x, y := toPixels(e.X, e.Y)
			in.Push(input.Event{
				Type:   typ,
				MouseX: x,
				MouseY: y,
				Button: input.Button(e.Button),
			})

		case *sdl.MouseWheelEvent:
			wheel := e.Y
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				wheel = -wheel
			}
			in.Push(input.Event{Type: input.EventMouseWheel, Wheel: wheel})
		}
	}
}

// pointScale returns a mapping from window coordinates to drawable pixels.
// They differ on high-DPI displays.
func (w *Window) pointScale() func(x, y int32) (int32, int32) {
	ww, wh := w.Size()
	dw, dh := w.DrawableSize()
	if ww <= 0 || wh <= 0 || (ww == dw && wh == dh) {
		return func(x, y int32) (int32, int32) { return x, y }
	}
	return func(x, y int32) (int32, int32) {
		return x * dw / ww, y * dh / wh
	}
}
