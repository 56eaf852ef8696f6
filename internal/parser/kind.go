// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"
)

// Kind is the value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindDuration
	KindBytes
	KindEnum
	KindCustom
)

var kindNames = map[Kind]string{
	KindString:   "string",
	KindInt:      "int",
	KindFloat:    "float",
	KindBool:     "bool",
	KindTime:     "time",
	KindDuration: "duration",
	KindBytes:    "bytes",
	KindEnum:     "enum",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Textual reports whether values of the kind are plain text, which makes the
// lexicographic comparison a valid fallback.
func (k Kind) Textual() bool {
	return k == KindString || k == KindEnum
}

// ParseKind resolves a kind name. A few aliases are accepted.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "string", "text", "str":
		return KindString, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "number", "num":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	case "time", "date", "datetime":
		return KindTime, nil
	case "duration":
		return KindDuration, nil
	case "bytes", "size":
		return KindBytes, nil
	case "enum":
		return KindEnum, nil
	case "custom":
		return KindCustom, nil
	}
	return KindString, fmt.Errorf("unknown column kind: %s", name)
}
