// Package tui shows a simulated strip in the terminal.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/sk6812/led"
	"lautenbacher.net/sk6812/logging"
	"lautenbacher.net/sk6812/sim"
)

// DefaultWidth is the number of LEDs per row.
const DefaultWidth = 100

var (
	bottomRamp = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	topRamp    = []string{" ", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
)

// Viewer renders every frame written to a sim.Port and shows the log below.
type Viewer struct {
	app    *tview.Application
	stripe *tview.TextView
	logs   *tview.TextView
	port   *sim.Port
	width  int
}

// New builds the viewer. quit is called when the user hits q.
func New(port *sim.Port, count int, quit func()) *Viewer {
	v := &Viewer{
		app:   tview.NewApplication(),
		port:  port,
		width: min(max(count, 1), DefaultWidth),
	}

	intro := tview.NewTextView()
	intro.SetBorder(true).SetTitle(" SK6812 Simulation ").SetTitleColor(tcell.ColorLightBlue)
	intro.SetText(fmt.Sprintf("%d LEDs on %s\nHit [#ff0000]q[-] to exit", count, port))
	intro.SetTextAlign(tview.AlignCenter)
	intro.SetDynamicColors(true)
	intro.SetBackgroundColor(tcell.ColorDarkSlateGray)

	v.stripe = tview.NewTextView()
	v.stripe.SetBorder(true)
	v.stripe.SetDynamicColors(true)
	v.stripe.SetBackgroundColor(tcell.ColorDarkSlateGray)
	v.stripe.SetChangedFunc(func() { v.app.Draw() })

	v.logs = tview.NewTextView()
	v.logs.SetBorder(true).SetTitle(" Log ")
	v.logs.SetMaxLines(500)
	v.logs.ScrollToEnd()
	v.logs.SetChangedFunc(func() { v.app.Draw() })

	rows := (count + v.width - 1) / v.width
	layout := tview.NewFlex().SetDirection(tview.FlexRow)
	layout.AddItem(intro, 4, 0, false)
	layout.AddItem(v.stripe, 3*max(rows, 1)+1, 0, false)
	layout.AddItem(v.logs, 0, 1, false)

	v.app.SetRoot(layout, true)
	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Rune() == 'Q' {
			quit()
		}
		return event
	})
	return v
}

// Run blocks until ctx is done. Logging goes to the log pane meanwhile and
// back to stderr afterwards.
func (v *Viewer) Run(ctx context.Context) error {
	if err := logging.SetOutput(v.logs); err != nil {
		return err
	}
	defer func() {
		if err := logging.SetOutput(os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, "failed to restore log output:", err)
		}
	}()

	go v.follow(ctx)
	go func() {
		<-ctx.Done()
		v.app.Stop()
	}()
	slog.Info("Simulation viewer started")
	return v.app.Run()
}

func (v *Viewer) follow(ctx context.Context) {
	frames := v.port.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case <-frames.Channel():
			v.stripe.SetText(Render(frames.Value(), v.width))
		}
	}
}

// Render draws leds as two lines of bar glyphs per row of width LEDs. The
// height of a bar follows the brightness, its color the hue.
func Render(leds []led.Led, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var buf strings.Builder
	for start := 0; start < len(leds); start += width {
		row := leds[start:min(start+width, len(leds))]
		var top, bottom strings.Builder
		for _, l := range row {
			if l.IsEmpty() {
				top.WriteString(" ")
				bottom.WriteString(" ")
				continue
			}
			t, b := glyphs(brightness(l))
			c := scaledColor(l)
			top.WriteString(c + t + "[-]")
			bottom.WriteString(c + b + "[-]")
		}
		if start > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(" " + top.String() + "\n " + bottom.String() + "\n")
	}
	return buf.String()
}

func brightness(l led.Led) byte {
	return max(l.Red, l.Green, l.Blue, l.White)
}

// glyphs returns the upper and lower half of a bar for value.
func glyphs(value byte) (string, string) {
	level := max((int(value)*16+254)/255, 1)
	if level <= 8 {
		return " ", bottomRamp[level-1]
	}
	return topRamp[level-9], "█"
}

// scaledColor returns the tview color tag of l at full brightness. White is
// mixed into all three channels.
func scaledColor(l led.Led) string {
	red := float64(l.Red) + float64(l.White)
	green := float64(l.Green) + float64(l.White)
	blue := float64(l.Blue) + float64(l.White)
	maxColor := math.Max(red, math.Max(green, blue))
	if maxColor == 0 {
		return "[#000000]"
	}
	factor := 255 / maxColor
	red = math.Min(red*factor, 255)
	green = math.Min(green*factor, 255)
	blue = math.Min(blue*factor, 255)

	const epsilon = 1e-9

	return fmt.Sprintf("[#%02x%02x%02x]", byte(math.Round(red+epsilon)), byte(math.Round(green+epsilon)), byte(math.Round(blue+epsilon)))
}
