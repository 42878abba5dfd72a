package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorStoreUnavailable distinguishes "could not read the store" from an empty
// result; aggregate readers must surface it instead of reporting zeros.
var ErrorStoreUnavailable = errors.New("store unavailable")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
