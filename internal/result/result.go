package result

import (
	"fmt"
	"io"
	"strings"

	"streaming-db/internal/config"
)

// Kind tags what an operation produced.
type Kind int

const (
	KindSuccess Kind = iota
	KindRows
	KindEmpty
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRows:
		return "rows"
	case KindEmpty:
		return "empty"
	case KindFailure:
		return "failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Row is one query result line.
type Row interface {
	Fields() []string
}

// Result is the outcome of one operation. Only Render knows the text
// protocol printed on stdout.
type Result struct {
	Kind Kind
	Rows []Row
	Err  error
}

func Success() Result {
	return Result{Kind: KindSuccess}
}

func Failure(err error) Result {
	return Result{Kind: KindFailure, Err: err}
}

// FromRows tags a query's rows, or Empty when there are none.
func FromRows[T Row](rows []T) Result {
	if len(rows) == 0 {
		return Result{Kind: KindEmpty}
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return Result{Kind: KindRows, Rows: out}
}

// Render writes "Success", "Fail", or one comma-joined line per row.
func (r Result) Render(w io.Writer, empty config.EmptyPolicy) error {
	switch r.Kind {
	case KindSuccess:
		_, err := fmt.Fprintln(w, "Success")
		return err
	case KindRows:
		for _, row := range r.Rows {
			if _, err := fmt.Fprintln(w, strings.Join(row.Fields(), ",")); err != nil {
				return err
			}
		}
		return nil
	case KindEmpty:
		if empty == config.EmptySilent {
			return nil
		}
	}
	_, err := fmt.Fprintln(w, "Fail")
	return err
}
