package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const debugEnv = "PLUGIN_BUILD_DEBUG"

// ConsoleWriter renders zerolog's JSON events as coloured lines.
type ConsoleWriter struct {
	out    io.Writer
	wd     string
	buffer strings.Builder
	lock   sync.Mutex
}

func NewConsoleWriter() *ConsoleWriter {
	wd, _ := os.Getwd()
	return newConsoleWriter(os.Stderr, wd)
}

func newConsoleWriter(out io.Writer, wd string) *ConsoleWriter {
	return &ConsoleWriter{out: out, wd: wd}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	levelColor := "[green]"
	switch evt[zerolog.LevelFieldName] {
	case "fatal", "error":
		levelColor = "[red]"
	case "warn":
		levelColor = "[yellow]"
	case "debug", "trace":
		levelColor = "[blue]"
	}
	w.color(levelColor)

	if plugin, ok := evt["plugin"].(string); ok {
		w.color("[bold]")
		w.buffer.WriteString(plugin)
		w.color("[reset]")
		w.color(levelColor)
		if target, ok := evt["target"].(string); ok {
			w.buffer.WriteString(" (" + target + ")")
		}
		w.buffer.WriteString(": ")
	}

	if evt[zerolog.LevelFieldName] == "error" {
		w.buffer.WriteString("Error: ")
	}

	if _, ok := evt["command"]; ok {
		w.buffer.WriteString("$ ")
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	if path, ok := evt["path"].(string); ok && w.wd != "" {
		// simplify the path
		if relPath, err := filepath.Rel(w.wd, path); err == nil && !strings.HasPrefix(relPath, "..") {
			msg = strings.ReplaceAll(msg, path, relPath)
		}
	}
	w.buffer.WriteString(msg)

	if errorDetails, ok := evt[zerolog.ErrorFieldName].(string); ok {
		w.buffer.WriteString("\n  ")
		w.buffer.WriteString(errorDetails)
	}

	if os.Getenv(debugEnv) != "" {
		names := make([]string, 0, len(evt))
		for name := range evt {
			names = append(names, name)
		}
		sort.Strings(names)

		w.buffer.WriteString("\n")
		for _, name := range names {
			w.buffer.WriteString(fmt.Sprintf("  %s: %+v\n", name, evt[name]))
		}
	}

	w.color("[reset]")
	w.buffer.WriteString("\n")
	if _, err := io.WriteString(w.out, w.buffer.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// color writes the escape sequence for a colorstring code. Messages are
// written as they are so brackets in them are never taken for codes.
func (w *ConsoleWriter) color(code string) {
	w.buffer.WriteString(colorstring.Color(code))
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, os.Getenv(debugEnv) != "")
	}
}
