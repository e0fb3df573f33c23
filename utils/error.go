package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorNotPermitted is returned when a record exists but belongs to another owner.
var ErrorNotPermitted = errors.New("not enough permissions")
