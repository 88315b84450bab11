package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/internal/config"
	"github.com/dshills/textweave/layout"
	"github.com/dshills/textweave/shaping"
	"github.com/dshills/textweave/textstore"
	"github.com/dshills/textweave/typeset"
)

var (
	styleText       = tcell.StyleDefault
	styleMarked     = tcell.StyleDefault.Underline(true)
	styleAttachment = tcell.StyleDefault.Dim(true)
	styleStatus     = tcell.StyleDefault.Reverse(true)
)

// reloadEvent is posted into the tcell event queue when the watched file
// changes on disk.
type reloadEvent struct{}

// viewer owns the screen and the layout stack for one document.
type viewer struct {
	screen   tcell.Screen
	store    *textstore.Store
	lm       *layout.Manager
	settings config.Settings
	log      zerolog.Logger
	path     string

	scrollY float64
	width   int
	height  int
}

func newViewer(path, content string, settings config.Settings, log zerolog.Logger) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	v := &viewer{
		screen:   screen,
		store:    textstore.New(content),
		settings: settings,
		log:      log,
		path:     path,
	}

	// Terminal cells are the layout unit: width 1 per cell, height 1 per
	// row.
	shaper := &shaping.Monospace{
		CellWidth: 1,
		Metrics:   shaping.Metrics{Ascent: 1},
	}
	opts := append(settings.LayoutOptions(),
		layout.WithDelegate(v),
		layout.WithLogger(log),
	)
	v.lm = layout.NewManager(v.store, shaper, opts...)
	v.store.Subscribe(v.lm.TextEdited)
	return v, nil
}

func (v *viewer) shutdown() {
	v.screen.Fini()
}

// Delegate callbacks from the layout manager.

func (v *viewer) LayoutHeightChanged(h float64) {
	v.log.Debug().Float64("height", h).Msg("document height changed")
}

func (v *viewer) LayoutMaxWidthChanged(w float64) {
	v.log.Debug().Float64("width", w).Msg("content width changed")
}

func (v *viewer) LayoutAdjustScroll(dy float64) {
	v.scrollY += dy
}

// eventLoop renders and processes input until quit.
func (v *viewer) eventLoop() error {
	for {
		v.render()
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(reloadEvent); ok {
				if err := v.reloadFile(); err != nil {
					v.log.Warn().Err(err).Msg("reload failed")
				}
			}
		case *tcell.EventKey:
			if quit := v.handleKey(ev); quit {
				return nil
			}
		case nil:
			return nil
		}
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	page := float64(v.height - 1)
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.scrollBy(-1)
	case tcell.KeyDown:
		v.scrollBy(1)
	case tcell.KeyPgUp:
		v.scrollBy(-page)
	case tcell.KeyPgDn:
		v.scrollBy(page)
	case tcell.KeyHome:
		v.scrollY = 0
	case tcell.KeyEnd:
		v.scrollY = v.maxScroll()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'w':
			v.settings.Wrap = !v.settings.Wrap
		case 'g':
			v.scrollY = 0
		case 'G':
			v.scrollY = v.maxScroll()
		case 'j':
			v.scrollBy(1)
		case 'k':
			v.scrollBy(-1)
		}
	}
	return false
}

func (v *viewer) scrollBy(dy float64) {
	v.scrollY += dy
	v.clampScroll()
}

func (v *viewer) maxScroll() float64 {
	m := v.lm.TotalHeight() - float64(v.height-1)
	if m < 0 {
		return 0
	}
	return m
}

func (v *viewer) clampScroll() {
	if v.scrollY < 0 {
		v.scrollY = 0
	}
	if m := v.maxScroll(); v.scrollY > m {
		v.scrollY = m
	}
}

// render lays out the visible window and draws it.
func (v *viewer) render() {
	v.width, v.height = v.screen.Size()
	if v.settings.Wrap {
		v.lm.SetWrapWidth(float64(v.width))
	} else {
		v.lm.SetWrapWidth(0)
	}
	v.clampScroll()

	rows := float64(v.height - 1)
	v.lm.LayoutFor(v.scrollY, v.scrollY+rows)

	v.screen.Clear()
	start, ok := v.lm.LineForPosition(v.scrollY)
	if !ok {
		start, ok = v.lm.LineForIndex(v.lm.LineCount() - 1)
	}
	for idx := start.Index; ok; idx++ {
		pos, found := v.lm.LineForIndex(idx)
		if !found || pos.YPos >= v.scrollY+rows {
			break
		}
		v.drawFragments(pos.Data, pos.YPos)
	}
	v.drawStatus()
	v.screen.Show()
}

func (v *viewer) drawFragments(line *typeset.Line, lineY float64) {
	line.EachFragment(func(f *typeset.Fragment, fy float64) bool {
		row := int(lineY + fy - v.scrollY)
		if row < 0 || row >= v.height-1 {
			return row < v.height-1
		}
		col := 0
		for _, run := range f.Runs {
			if run.IsAttachment {
				for i := 0; i < int(run.Width); i++ {
					v.screen.SetContent(col+i, row, '░', nil, styleAttachment)
				}
				col += int(run.Width)
				continue
			}
			style := styleText
			if run.Shaped.Marked {
				style = styleMarked
			}
			for _, r := range run.Shaped.Text {
				if r == '\n' || r == '\r' {
					continue
				}
				v.screen.SetContent(col, row, r, nil, style)
				col += runewidth.RuneWidth(r)
			}
		}
		return true
	})
}

func (v *viewer) drawStatus() {
	wrap := "nowrap"
	if v.settings.Wrap {
		wrap = fmt.Sprintf("wrap:%d", v.width)
	}
	status := fmt.Sprintf(" %s | %d lines | %s | y=%.0f/%.0f | q quit, w wrap ",
		v.path, v.lm.LineCount(), wrap, v.scrollY, v.lm.TotalHeight())

	row := v.height - 1
	col := 0
	for _, r := range status {
		if col >= v.width {
			break
		}
		v.screen.SetContent(col, row, r, nil, styleStatus)
		col += runewidth.RuneWidth(r)
	}
	for ; col < v.width; col++ {
		v.screen.SetContent(col, row, ' ', nil, styleStatus)
	}
}

// reloadFile replaces the document with the file's current content. The
// replacement flows through the normal edit path, so layout is updated
// incrementally rather than rebuilt.
func (v *viewer) reloadFile() error {
	content, err := os.ReadFile(v.path)
	if err != nil {
		return err
	}
	v.store.Replace(core.NewRange(0, v.store.Len()), string(content))
	v.log.Info().Int("bytes", len(content)).Msg("document reloaded")
	return nil
}

// watchLoop forwards file-change notifications into the event loop.
func (v *viewer) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				_ = v.screen.PostEvent(tcell.NewEventInterrupt(reloadEvent{}))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			v.log.Warn().Err(err).Msg("file watcher error")
		}
	}
}
