package pkg

import "errors"

var ErrEmptyResult = errors.New("empty result")

// Result carries either a value or the error of an operation against an
// external service. Callers are expected to handle both branches.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrEmptyResult
	}
	return Result[T]{err: err}
}

// ResultOf builds a Result from the usual (value, error) pair.
func ResultOf[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

func (r Result[T]) IsOk() bool {
	return r.ok
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return ErrEmptyResult
	}
	return r.err
}

func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.Err()
}

// Handle calls exactly one of onOk / onErr.
func (r Result[T]) Handle(onOk func(T), onErr func(error)) {
	if r.ok {
		if onOk != nil {
			onOk(r.value)
		}
		return
	}
	if onErr != nil {
		onErr(r.Err())
	}
}
