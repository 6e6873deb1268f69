package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var splashTitle = []struct {
	char  rune
	color tcell.Color
}{
	{'E', tcell.ColorWhite},
	{'I', tcell.ColorYellow},
	{'G', tcell.ColorYellow},
	{'E', tcell.ColorYellow},
	{'N', tcell.ColorWhite},
}

const splashHint = "Press any key to enter the application"

// SplashScreen reveals the title one letter per step and waits for a key.
// It returns early if the screen is finalized.
func SplashScreen(s tcell.Screen, step time.Duration) {
	width, height := s.Size()

	for reveal := 1; reveal <= len(splashTitle); reveal++ {
		s.Clear()

		startX := (width - len(splashTitle)) / 2
		y := height / 2

		for i := 0; i < reveal; i++ {
			style := tcell.StyleDefault.Foreground(splashTitle[i].color).Bold(true)
			s.SetContent(startX+i, y, splashTitle[i].char, nil, style)
		}

		hintW := runewidth.StringWidth(splashHint)
		printText(s, (width-hintW)/2, y+2, splashHint, tcell.StyleDefault.Foreground(tcell.ColorYellow), hintW)

		s.Show()
		time.Sleep(step)
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey:
			return
		case *tcell.EventResize:
			s.Sync()
		case nil:
			return
		}
	}
}
