/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Kind classifies the errors returned by the policy manager.
type Kind int

// Error kinds
const (
	Unknown Kind = iota
	InvalidContext
	InvalidArgument
	OutOfMemory
	NotFound
	CapacityExceeded
	NotPermitted
)

var kindNames = map[Kind]string{
	Unknown:          "unknown",
	InvalidContext:   "invalid context",
	InvalidArgument:  "invalid argument",
	OutOfMemory:      "out of memory",
	NotFound:         "not found",
	CapacityExceeded: "capacity exceeded",
	NotPermitted:     "not permitted",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PolicyError is a structured error carrying a Kind and a list of key/value
// pairs.  It can be logged through zap as a nested object.
type PolicyError struct {
	kind Kind
	msg  string
	kv   []interface{}
}

func newError(kind Kind, msg string, kv ...interface{}) *PolicyError {
	return &PolicyError{
		kind: kind,
		msg:  msg,
		kv:   kv,
	}
}

// NewError returns a PolicyError of the given kind.  Trailing arguments are
// alternating keys and values, reported when the error is logged.
func NewError(kind Kind, msg string, kv ...interface{}) error {
	return newError(kind, msg, kv...)
}

func (e *PolicyError) Error() string {
	return e.msg
}

// Kind returns the error's classification.
func (e *PolicyError) Kind() Kind {
	return e.kind
}

// MarshalLogObject implements zapcore.ObjectMarshaler.  Keys which aren't
// strings, and a dangling key without a value, are reported rather than
// dropped.
func (e *PolicyError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	enc.AddString("kind", e.kind.String())

	for i := 0; i < len(e.kv); i += 2 {
		if field, ok := e.kv[i].(zapcore.Field); ok {
			field.AddTo(enc)
			i--
			continue
		}

		if i == len(e.kv)-1 {
			zap.Any("ignored", e.kv[i]).AddTo(enc)
			break
		}

		key, ok := e.kv[i].(string)
		if !ok {
			key = fmt.Sprintf("invalid@%d", i)
		}
		zap.Any(key, e.kv[i+1]).AddTo(enc)
	}
	return nil
}

// KindOf returns the Kind of the PolicyError at the root of err, or Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	if pe, ok := errors.Cause(err).(*PolicyError); ok {
		return pe.kind
	}
	return Unknown
}

// IsKind returns true if err is rooted in a PolicyError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
