package jsontemplate

import (
	"io"
	"iter"
)

// ExecuteIter expands t once per item from seq and writes each result to w
// as it is produced. It stops at the first error; output already written
// for earlier items stays written.
func ExecuteIter[T any](w io.Writer, t *Template, seq iter.Seq[T]) error {
	var streamErr error
	seq(func(item T) bool {
		if err := t.Execute(w, item); err != nil {
			streamErr = err
			return false
		}
		return true
	})
	return streamErr
}

// ExecuteChan expands t once per item received from ch.
// It is a thin wrapper around [ExecuteIter].
func ExecuteChan[T any](w io.Writer, t *Template, ch <-chan T) error {
	return ExecuteIter(w, t, chanToIter(ch))
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}
