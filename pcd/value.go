package pcd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ZeroValue returns the value a PCD of the given datum type takes when
// neither the module nor the package supplies a default.
func ZeroValue(datumType string) string {
	switch datumType {
	case DatumBoolean:
		return "FALSE"
	case DatumPointer:
		return `L""`
	default:
		return "0"
	}
}

// MaxDatumSize returns the byte size recorded for a value. Fixed width types
// ignore value; VOID* sizes are computed from the literal.
func MaxDatumSize(datumType, value string) (int, error) {
	switch datumType {
	case DatumUint8, DatumBoolean:
		return 1, nil
	case DatumUint16:
		return 2, nil
	case DatumUint32:
		return 4, nil
	case DatumUint64:
		return 8, nil
	case DatumPointer:
		return MaxSizeForPointer(value)
	default:
		return 0, fmt.Errorf("unknown datum type %q", datumType)
	}
}

// MaxSizeForPointer computes the byte size of a VOID* literal:
//
//	L"..."   UTF-16 string, two bytes per character
//	"..."    ASCII string, one byte per character
//	{...}    comma separated byte list, one byte per element
//
// Byte list elements are 0x prefixed hex or decimal integers in [0, 0xFF].
// The closing quote or brace must end the literal. An empty value has size
// zero.
func MaxSizeForPointer(value string) (int, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, nil
	}

	switch s[0] {
	case 'L':
		open := strings.Index(s, `"`)
		end := strings.LastIndex(s, `"`)
		if open != 1 || open >= end {
			return 0, &MalformedValueError{Value: value, Reason: "unterminated unicode string"}
		}
		if end != len(s)-1 {
			return 0, &MalformedValueError{Value: value, Reason: "trailing characters after unicode string"}
		}
		return utf16Len(s[open+1:end]) * 2, nil

	case '"':
		end := strings.LastIndex(s, `"`)
		if end <= 0 {
			return 0, &MalformedValueError{Value: value, Reason: "unterminated string"}
		}
		if end != len(s)-1 {
			return 0, &MalformedValueError{Value: value, Reason: "trailing characters after string"}
		}
		return utf16Len(s[1:end]), nil

	case '{':
		end := strings.LastIndex(s, "}")
		if end <= 0 {
			return 0, &MalformedValueError{Value: value, Reason: "unterminated byte array"}
		}
		if end != len(s)-1 {
			return 0, &MalformedValueError{Value: value, Reason: "trailing characters after byte array"}
		}
		inner := strings.TrimSpace(s[1:end])
		if inner == "" {
			return 0, nil
		}
		elems := strings.Split(inner, ",")
		for _, e := range elems {
			e = strings.TrimSpace(e)
			if err := parseByte(e); err != nil {
				return 0, &MalformedValueError{Value: value, Reason: err.Error()}
			}
		}
		return len(elems), nil

	default:
		return 0, &MalformedValueError{Value: value, Reason: "expected L\"...\", \"...\" or {...}"}
	}
}

// parseByte accepts a C style byte literal: 0x followed by hex digits, or
// decimal digits.
func parseByte(e string) error {
	digits, base := e, 10
	if len(e) > 2 && (e[:2] == "0x" || e[:2] == "0X") {
		digits, base = e[2:], 16
	}
	if _, err := strconv.ParseUint(digits, base, 8); err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("byte %q out of range", e)
		}
		return fmt.Errorf("invalid byte %q", e)
	}
	return nil
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
