// Package ux renders command results and errors for the terminal.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter writes one command result.
type Formatter interface {
	Format(data any) error
}

// TextRenderer is implemented by command results that have a terminal view.
type TextRenderer interface {
	RenderText(s Styles) string
}

// FormatterOptions configures NewFormatter. A nil Writer means stdout.
type FormatterOptions struct {
	Writer  io.Writer
	NoColor bool // text only
	Compact bool // json and yaml: no indentation
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(data any) error

func (f FormatterFunc) Format(data any) error { return f(data) }

var formatters = map[string]func(w io.Writer, opts FormatterOptions) FormatterFunc{
	"json": func(w io.Writer, opts FormatterOptions) FormatterFunc {
		return func(data any) error {
			enc := json.NewEncoder(w)
			if !opts.Compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(data)
		}
	},
	"yaml": func(w io.Writer, opts FormatterOptions) FormatterFunc {
		return func(data any) error {
			enc := yaml.NewEncoder(w)
			if !opts.Compact {
				enc.SetIndent(2)
			}
			if err := enc.Encode(data); err != nil {
				return err
			}
			return enc.Close()
		}
	},
	"text": func(w io.Writer, opts FormatterOptions) FormatterFunc {
		styles := NewStyles(opts.NoColor)
		return func(data any) error {
			text, err := renderText(data, styles)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, text)
			return err
		}
	},
}

// Formats lists the names NewFormatter accepts.
func Formats() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewFormatter returns the formatter called format. An empty name selects
// text.
func NewFormatter(format string, opts FormatterOptions) (Formatter, error) {
	if format == "" {
		format = "text"
	}
	build, ok := formatters[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	return build(w, opts), nil
}

func renderText(data any, styles Styles) (string, error) {
	switch v := data.(type) {
	case TextRenderer:
		return v.RenderText(styles), nil
	case fmt.Stringer:
		return v.String(), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("text formatter cannot render %T", data)
}
