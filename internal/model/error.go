package model

import "errors"

var ErrorInvalidGroup = errors.New("invalid group")
var ErrorInvalidInput = errors.New("invalid input")
var ErrorEncodingFailure = errors.New("attachment encoding failed")
var ErrorAccessDenied = errors.New("access denied")
var ErrorGroupNotFound = errors.New("group not found")
