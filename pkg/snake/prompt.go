// Package snake holds the interactive prompts the CLI falls back to when an
// argument is missing.
package snake

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/somnium/pkg/dream"
)

// IO carries the terminal the prompts run on.
type IO struct {
	In  io.Reader
	Out io.Writer
}

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} : ",
	Valid:   "{{ . | green }} : ",
	Invalid: "{{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

func (t IO) stdin() io.ReadCloser {
	return io.NopCloser(t.In)
}

func (t IO) stdout() io.WriteCloser {
	return NopCloser(t.Out)
}

// Text asks for a non-empty line.
func (t IO) Text(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("empty")
			}
			return nil
		},
		Stdin:  t.stdin(),
		Stdout: t.stdout(),
	}
	out, err := prompt.Run()
	return strings.TrimSpace(out), err
}

// Secret asks for a masked value, e.g. a promo code.
func (t IO) Secret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Mask:      '•',
		Stdin:     t.stdin(),
		Stdout:    t.stdout(),
	}
	out, err := prompt.Run()
	return strings.TrimSpace(out), err
}

// Confirm asks a yes/no question; anything but yes is no.
func (t IO) Confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.stdin(),
		Stdout:    t.stdout(),
	}
	out, err := prompt.Run()
	if err != nil {
		return false
	}
	yes, _ := ParseBool(out)
	return yes
}

// unfiled is the select row that clears a dream's collection.
var unfiled = dream.Section{Name: "(no collection)"}

// Section lets the user pick a collection. Picking the first row returns
// an empty id.
func (t IO) Section(label string, sections []dream.Section) (string, error) {
	items := append([]dream.Section{unfiled}, sections...)
	prompt := promptui.Select{
		HideHelp: true,
		Label:    label,
		Items:    items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "➜  {{ .Name | bold }} {{ .ID | faint }}",
			Inactive: "   {{ .Name }} {{ .ID | faint }}",
			Selected: "{{ .Name | bold }}",
		},
		Size: 10,
		Searcher: func(input string, index int) bool {
			name := strings.ReplaceAll(strings.ToLower(items[index].Name), " ", "")
			input = strings.ReplaceAll(strings.ToLower(input), " ", "")
			return strings.Contains(name, input)
		},
		Stdin:  t.stdin(),
		Stdout: t.stdout(),
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return items[i].ID, nil
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "NO", "No":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}
