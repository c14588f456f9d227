package job

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths and angles as written in job files.

// Unit represents the original unit of a value as specified in the DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as pixels for lengths
	UnitPX               // pixels
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitDeg              // degrees
)

// Conversion constants between pt, mm and inches.
const (
	PtToMm  = 25.4 / 72
	MmPerIn = 25.4
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"deg", UnitDeg}}

// String returns the DSL suffix of u.
func (u Unit) String() string {
	for _, suf := range unitSuffixes {
		if suf.u == u {
			return suf.s
		}
	}
	return ""
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ToMM converts a physical length to millimeters. Pixels and unit-less values
// need a resolution and are converted through dpi.
func (l Length) ToMM(dpi float64) float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * MmPerIn
	case UnitPT:
		return l.Value * PtToMm
	default:
		if dpi <= 0 {
			return 0
		}
		return l.Value / dpi * MmPerIn
	}
}

// Pixels converts l to whole pixels at dpi, rounding to nearest.
func (l Length) Pixels(dpi float64) (int, error) {
	switch l.Unit {
	case UnitNone, UnitPX:
		return int(l.Value + 0.5), nil
	case UnitDeg:
		return 0, fmt.Errorf("角度 %s 不能用作长度", l)
	}
	if dpi <= 0 {
		return 0, fmt.Errorf("换算 %s 需要正的 dpi（当前 %g）", l, dpi)
	}
	return int(l.ToMM(dpi)/MmPerIn*dpi + 0.5), nil
}

// Degrees returns the value of an angle. Unit-less numbers are read as degrees.
func (l Length) Degrees() (float64, error) {
	switch l.Unit {
	case UnitDeg, UnitNone:
		return l.Value, nil
	default:
		return 0, fmt.Errorf("%s 不是角度", l)
	}
}

// ParseLength parses a DSL number with an optional unit suffix.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("空的数值")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析数值 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}
