// Package timecodec converts between entered swim times ("M:SS.ss" or "SS.ss")
// and canonical durations in seconds.
//
// Accepted grammar:
//
//	SECONDS := digit+ ('.' digit+)?
//	TIME    := SECONDS | digit+ ':' SECONDS
//
// Seconds within a minute are not capped at 59 unless the codec is built
// WithStrictSeconds. Durations above MaxSeconds are rejected.
package timecodec

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	centisPerSecond  = 100
	centisPerMinute  = secondsPerMinute * centisPerSecond

	// wholeSeconds is where float64 stops holding fractions of a second and
	// centiseconds no longer fit comfortably in an int64.
	wholeSeconds = 1 << 55
)

// MaxSeconds is the largest duration Parse accepts. Below it every
// centisecond count is exact in a float64.
const MaxSeconds = float64(1<<53) / centisPerSecond

// Placeholder is rendered when there is no duration to show.
const Placeholder = "-"

// Option configures a Codec.
type Option func(*Codec)

// WithStrictSeconds rejects "M:SS.ss" input whose seconds part is 60 or more.
func WithStrictSeconds() Option {
	return func(c *Codec) {
		c.strictSeconds = true
	}
}

// Codec parses and formats swim times.
type Codec struct {
	strictSeconds bool
}

// New returns a Codec. The zero value is also ready to use.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var lenient = New()

// Parse decodes text with the default (lenient) codec.
func Parse(text string) (float64, error) {
	return lenient.Parse(text)
}

// Parse decodes text into seconds.
func (c *Codec) Parse(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &FormatError{Input: text, Reason: "no digits"}
	}

	minutesPart, secondsPart, hasMinutes := strings.Cut(s, ":")
	if !hasMinutes {
		secs, err := parseSeconds(text, s)
		if err != nil {
			return 0, err
		}
		return checkRange(text, secs)
	}

	if !isDigits(minutesPart) {
		return 0, &FormatError{Input: text, Reason: "minutes must be a non-negative integer"}
	}
	minutes, err := strconv.ParseFloat(minutesPart, 64)
	if err != nil {
		return 0, &FormatError{Input: text, Reason: "minutes out of range"}
	}
	secs, err := parseSeconds(text, secondsPart)
	if err != nil {
		return 0, err
	}
	if c.strictSeconds && secs >= secondsPerMinute {
		return 0, &FormatError{Input: text, Reason: "seconds must be below 60"}
	}
	return checkRange(text, minutes*secondsPerMinute+secs)
}

func checkRange(input string, secs float64) (float64, error) {
	if secs > MaxSeconds {
		return 0, &FormatError{Input: input, Reason: "duration out of range"}
	}
	return secs, nil
}

// parseSeconds validates the SECONDS production before handing it to strconv,
// which on its own would also accept signs, exponents and "Inf".
func parseSeconds(input, s string) (float64, error) {
	whole, frac, hasFrac := strings.Cut(s, ".")
	if !isDigits(whole) {
		return 0, &FormatError{Input: input, Reason: "seconds must start with digits"}
	}
	if hasFrac && !isDigits(frac) {
		return 0, &FormatError{Input: input, Reason: "malformed decimal"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &FormatError{Input: input, Reason: "seconds out of range"}
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders seconds for display. Values are rounded to centiseconds;
// from one minute up the result is "M:SS.ss", below it "S.ss". Negative
// values, such as pace deviations, carry a leading minus sign.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Placeholder
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	if seconds >= wholeSeconds {
		return sign + formatWhole(seconds)
	}
	centis := int64(math.Round(seconds * centisPerSecond))
	if centis >= centisPerMinute {
		minutes := centis / centisPerMinute
		rest := centis % centisPerMinute
		return fmt.Sprintf("%s%d:%02d.%02d", sign, minutes, rest/centisPerSecond, rest%centisPerSecond)
	}
	if centis == 0 {
		sign = ""
	}
	return fmt.Sprintf("%s%d.%02d", sign, centis/centisPerSecond, centis%centisPerSecond)
}

// formatWhole renders a duration that float64 can only hold in whole seconds.
func formatWhole(seconds float64) string {
	n, _ := new(big.Float).SetFloat64(seconds).Int(nil)
	minutes, rest := new(big.Int).QuoRem(n, big.NewInt(secondsPerMinute), new(big.Int))
	return fmt.Sprintf("%s:%02d.00", minutes.String(), rest.Int64())
}

// FormatOptional renders a possibly absent duration, returning Placeholder for nil.
func FormatOptional(seconds *float64) string {
	if seconds == nil {
		return Placeholder
	}
	return Format(*seconds)
}

// Round2 rounds to the codec's display precision.
func Round2(seconds float64) float64 {
	return math.Round(seconds*centisPerSecond) / centisPerSecond
}
