package authz

import "errors"

// ErrValidation reports a malformed Request: fields the caller must
// have filled in before evaluation can proceed.
var ErrValidation = errors.New("authz: validation error")

var errNonBooleanCondition = errors.New("authz: condition expression did not evaluate to a boolean")
