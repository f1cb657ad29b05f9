package parse

import (
    "errors"
    "strconv"
    "strings"
)

// ErrNotANumber is returned when a cell holds no parseable value
// (empty, "-", "N/A" and friends).
var ErrNotANumber = errors.New("not a number")

// Number parses a Brazilian-formatted numeric string: "1.234,56" means
// 1234.56. Currency prefixes and surrounding whitespace are tolerated.
// A trailing "%" divides by 100, so "12,3%" yields 0.123.
func Number(s string) (float64, error) {
    t := strings.TrimSpace(s)
    t = strings.TrimPrefix(t, "R$")
    t = strings.TrimSpace(t)
    if t == "" || t == "-" || t == "--" || strings.EqualFold(t, "n/a") || strings.EqualFold(t, "nd") {
        return 0, ErrNotANumber
    }
    pct := strings.HasSuffix(t, "%")
    t = strings.TrimSuffix(t, "%")
    t = strings.TrimSpace(t)

    // Thousands separator first, then decimal comma.
    t = strings.ReplaceAll(t, ".", "")
    t = strings.ReplaceAll(t, ",", ".")

    v, err := strconv.ParseFloat(t, 64)
    if err != nil {
        return 0, ErrNotANumber
    }
    if pct {
        v /= 100
    }
    return v, nil
}

// Percent parses a percentage into a fraction even without the "%" sign:
// "11,54" yields 0.1154.
func Percent(s string) (float64, error) {
    t := strings.TrimSpace(s)
    if strings.HasSuffix(t, "%") {
        return Number(t)
    }
    v, err := Number(t)
    if err != nil {
        return 0, err
    }
    return v / 100, nil
}

// Abbreviated parses values like "1,2 B" or "345,6 M" (Brazilian
// billions/millions abbreviations) into plain floats.
func Abbreviated(s string) (float64, error) {
    t := strings.TrimSpace(s)
    mult := 1.0
    switch {
    case strings.HasSuffix(t, "B"):
        mult = 1e9
        t = strings.TrimSuffix(t, "B")
    case strings.HasSuffix(t, "M"):
        mult = 1e6
        t = strings.TrimSuffix(t, "M")
    case strings.HasSuffix(t, "K"):
        mult = 1e3
        t = strings.TrimSuffix(t, "K")
    }
    v, err := Number(t)
    if err != nil {
        return 0, err
    }
    return v * mult, nil
}
