package service

import (
	"reflect"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func mustNotNil(v any, msg string) {
	if isNil(v) {
		panic(msg)
	}
}

// observe is deferred as observe(recorder, name, time.Now(), &err)
func observe(recorder metrics.IRecorder, usecase string, start time.Time, err *error) {
	recorder.ObserveUsecase(usecase, start, *err)
}

func orNopRecorder(r metrics.IRecorder) metrics.IRecorder {
	if isNil(r) {
		return metrics.Nop{}
	}
	return r
}
