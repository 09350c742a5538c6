package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uilive"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Display selects how progress is shown in the terminal.
type Display string

const (
	DisplayAuto Display = "auto"
	DisplayBar  Display = "bar"
	DisplayText Display = "text"
	DisplayNone Display = "none"
)

func (d *Display) UnmarshalText(b []byte) error {
	switch v := Display(strings.ToLower(string(b))); v {
	case DisplayAuto, DisplayBar, DisplayText, DisplayNone:
		*d = v
		return nil
	default:
		return fmt.Errorf("unknown display %q, expected auto, bar, text or none", string(b))
	}
}

// Resolve turns auto into bar when f is a terminal and into text otherwise.
func (d Display) Resolve(f *os.File) Display {
	if d != DisplayAuto && d != "" {
		return d
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return DisplayBar
	}
	return DisplayText
}

// Renderer consumes events until the channel is closed.
type Renderer interface {
	Render(events <-chan Event)
}

// NewRenderer returns the renderer for an already resolved display.
func NewRenderer(d Display, w io.Writer) Renderer {
	switch d {
	case DisplayBar:
		return NewBarRenderer(w)
	case DisplayNone:
		return NopRenderer{}
	default:
		return TextRenderer{}
	}
}

// NopRenderer drains the channel.
type NopRenderer struct{}

func (NopRenderer) Render(events <-chan Event) {
	for range events {
	}
}

// TextRenderer logs one line when a download starts and one when it ends.
type TextRenderer struct{}

func (TextRenderer) Render(events <-chan Event) {
	for e := range events {
		switch e.Kind() {
		case KindStarted:
			log.Info().
				Strs("profiles", e.Profiles).
				Str("subreddit", e.SubredditName).
				Str("url", e.URL).
				Int64("length", e.DownloadLength).
				Msg("downloading")
		case KindFinished:
			log.Info().
				Strs("profiles", e.Profiles).
				Str("subreddit", e.SubredditName).
				Str("url", e.URL).
				Msg("done")
		case KindError:
			log.Error().
				Strs("profiles", e.Profiles).
				Str("subreddit", e.SubredditName).
				Str("url", e.URL).
				Str("error", e.Error).
				Msg("download failed")
		}
	}
}

// BarRenderer draws one bar per active download and a running total.
type BarRenderer struct {
	w        *uilive.Writer
	interval time.Duration
	width    int
}

func NewBarRenderer(out io.Writer) *BarRenderer {
	w := uilive.New()
	w.Out = out
	return &BarRenderer{
		w:        w,
		interval: 100 * time.Millisecond,
		width:    30,
	}
}

type barState struct {
	label    string
	total    int64
	received int64
}

func (br *BarRenderer) Render(events <-chan Event) {
	var (
		active   = make(map[string]*barState)
		order    []string
		finished int
		failed   int
		ticker   = time.NewTicker(br.interval)
	)
	defer ticker.Stop()

	draw := func() {
		var sb strings.Builder
		for _, url := range order {
			st := active[url]
			fmt.Fprintf(&sb, "%s %s\n", br.bar(st.received, st.total), st.label)
		}
		fmt.Fprintf(&sb, "Download status: Active=%d; Finished=%d; Failed=%d\n", len(order), finished, failed)
		_, _ = io.WriteString(br.w, sb.String())
		_ = br.w.Flush()
	}

	for {
		select {
		case e, ok := <-events:
			if !ok {
				draw()
				return
			}
			st, known := active[e.URL]
			switch e.Kind() {
			case KindStarted, KindChunk:
				if !known {
					st = &barState{label: fmt.Sprintf("%v [%s] %s", e.Profiles, e.SubredditName, e.URL)}
					active[e.URL] = st
					order = append(order, e.URL)
				}
				st.total = e.DownloadLength
				st.received += e.ChunkLength
			case KindFinished, KindError:
				if e.Kind() == KindError {
					failed++
					fmt.Fprintf(br.w.Bypass(), "%v [%s] %s: %s\n", e.Profiles, e.SubredditName, e.URL, e.Error)
				} else {
					finished++
				}
				if known {
					delete(active, e.URL)
					order = removeString(order, e.URL)
				}
			}
		case <-ticker.C:
			draw()
		}
	}
}

func (br *BarRenderer) bar(received, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("[%s] %10s", strings.Repeat("?", br.width), formatBytes(received))
	}
	if received > total {
		received = total
	}
	filled := int(float64(br.width) * float64(received) / float64(total))
	return fmt.Sprintf("[%s%s] %3d%% %s/%s",
		strings.Repeat("█", filled),
		strings.Repeat("░", br.width-filled),
		received*100/total,
		formatBytes(received),
		formatBytes(total),
	)
}

func removeString(s []string, v string) []string {
	for i := range s {
		if s[i] == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
