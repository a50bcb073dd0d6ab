package commands

import (
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/internal/cli/config"
	"github.com/reoring/contracts/source"
)

// ErrInvalidInput is returned after a report of rejected documents has been
// written. main exits with status 1 without printing it again.
var ErrInvalidInput = errors.New("input failed validation")

// result is the outcome for one input document.
type result struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Data  any    `json:"data,omitempty"`
	// Errors holds the plain message shape of the validation error.
	Errors any `json:"errors,omitempty"`

	issues contracts.Issues
}

// classify turns a load error into a failed result. Errors that are not
// about the input are returned as is.
func classify(file string, err error) (result, error) {
	var se *source.Error
	if errors.As(err, &se) {
		return result{File: file, Errors: []any{se.Error()}, issues: se.Issues()}, nil
	}
	if contracts.IsValidationError(err) {
		return result{File: file, Errors: contracts.MessagesOf(err), issues: contracts.IssuesOf(err)}, nil
	}
	return result{}, err
}

func render(w io.Writer, mode string, results []result) error {
	switch mode {
	case config.OutputJSON:
		return renderJSON(w, results)
	case config.OutputTable:
		return renderTable(w, results)
	default:
		return renderText(w, results)
	}
}

func renderJSON(w io.Writer, results []result) error {
	if len(results) == 1 {
		return writeJSON(w, results[0])
	}
	return writeJSON(w, results)
}

func writeJSON(w io.Writer, v any) error {
	b, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func renderText(w io.Writer, results []result) error {
	for _, r := range results {
		if r.Valid {
			if len(results) > 1 {
				_, _ = fmt.Fprintf(w, "%s: ok\n", r.File)
			}
			if err := writeJSON(w, r.Data); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %d issue(s)\n", r.File, len(r.issues))
		for _, is := range r.issues {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", is.Path, is.Message)
		}
	}
	return nil
}

func renderTable(w io.Writer, results []result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Path", "Code", "Message"})
	for _, r := range results {
		if r.Valid {
			t.AppendRow(table.Row{r.File, "/", "", "ok"})
			continue
		}
		for _, is := range r.issues {
			t.AppendRow(table.Row{r.File, is.Path, is.Code, is.Message})
		}
	}
	t.Render()
	return nil
}
