// Package platform owns the SDL2 window, renderer and event pump: the
// cabinet's video output and keyboard input, built on a streaming-texture
// draw cycle (Update/Clear/Copy/Present each frame).
package platform

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/dkasak/invaders8080/machine"
	"github.com/dkasak/invaders8080/memory"
)

const (
	videoWidth  = 224
	videoHeight = 256
	windowTitle = "Space Invaders"
)

// Window wraps the SDL2 window/renderer/texture triple and the pixel buffer
// that gets rebuilt from a video snapshot each frame.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   [videoHeight][videoWidth]uint32
}

// New creates an SDL2 window sized videoWidth*scale x videoHeight*scale and
// a streaming texture at the cabinet's native resolution; SDL scales it up
// to the window automatically on Present.
func New(scale int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}

	w := &Window{}

	window, err := sdl.CreateWindow(
		windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(videoWidth*scale), int32(videoHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, err
	}
	w.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, err
	}
	w.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		videoWidth, videoHeight,
	)
	if err != nil {
		return nil, err
	}
	w.texture = texture

	return w, nil
}

// Close tears down the SDL2 resources in reverse order of creation.
func (w *Window) Close() {
	w.texture.Destroy()
	w.renderer.Destroy()
	w.window.Destroy()
	sdl.Quit()
}

// Draw unpacks a video snapshot into the pixel buffer and presents it. The
// 7 KiB region is a 256-row by 32-column bitmap with the CRT rotated 90
// degrees counter-clockwise: byte i contributes 8 vertically-stacked pixels
// at column i/32, row y = 255 - ((i mod 32) * 8 + bit).
func (w *Window) Draw(video []byte) {
	for i := 0; i < memory.VideoSize; i++ {
		column := i / 32
		b := video[i]
		for bit := 0; bit < 8; bit++ {
			row := 255 - ((i%32)*8 + bit)
			var px uint32
			if b&(1<<uint(bit)) != 0 {
				px = 0xFFFFFFFF
			}
			w.pixels[row][column] = px
		}
	}

	pitch := videoWidth * int(unsafe.Sizeof(uint32(0)))
	w.texture.Update(nil, unsafe.Pointer(&w.pixels), pitch)
	w.renderer.Clear()
	w.renderer.Copy(w.texture, nil, nil)
	w.renderer.Present()
}

// keymap translates a host keycode to a cabinet Key, per the cabinet's
// fixed control layout.
var keymap = map[sdl.Keycode]machine.Key{
	sdl.K_c:     machine.KeyCredit,
	sdl.K_x:     machine.Key2PStart,
	sdl.K_z:     machine.Key1PStart,
	sdl.K_SPACE: machine.KeyShoot,
	sdl.K_LEFT:  machine.KeyLeft,
	sdl.K_RIGHT: machine.KeyRight,
}

// PollEvents drains the SDL event queue, publishing cabinet key transitions
// onto keys (non-blocking: the channel is buffered, and a full channel just
// drops the transition rather than blocking the event thread) and
// reporting whether a quit was requested (window close or Escape).
func PollEvents(keys chan<- machine.KeyEvent) bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue // auto-repeat key-downs are not transitions
			}
			if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
				quit = true
				continue
			}
			key, ok := keymap[e.Keysym.Sym]
			if !ok {
				continue
			}
			ev := machine.KeyEvent{Key: key, Pressed: e.Type == sdl.KEYDOWN}
			select {
			case keys <- ev:
			default:
			}
		}
	}
	return quit
}
