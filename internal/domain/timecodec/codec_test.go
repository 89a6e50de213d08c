package timecodec_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/swimstats/internal/domain/timecodec"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given the default codec", t, func() {
		Convey("When parsing minute notation", func() {
			d, err := timecodec.Parse("1:05.50")

			Convey("Then minutes and seconds are combined", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 65.5)
			})
		})

		Convey("When parsing seconds only", func() {
			d, err := timecodec.Parse("25.00")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 25.0)

			d, err = timecodec.Parse("31")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 31.0)
		})

		Convey("When parsing zero", func() {
			d, err := timecodec.Parse("0.00")

			Convey("Then zero is a valid duration", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 0)
			})
		})

		Convey("When the input has surrounding whitespace", func() {
			d, err := timecodec.Parse("  2:00.01\n")
			So(err, ShouldBeNil)
			So(d, ShouldAlmostEqual, 120.01, 1e-9)
		})

		Convey("When seconds within the minute exceed 59", func() {
			d, err := timecodec.Parse("1:75.00")

			Convey("Then the lenient codec accepts them", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 135.0)
			})
		})

		Convey("When the input is malformed", func() {
			for _, in := range []string{
				"", "   ", "abc", "-1.00", "+3.2", "1:-05.00", "-1:05.00", "1.", ".5",
				"1..2", "1:2:3", ":30.00", "1:", "1e2", "Inf", "NaN", "30,5", "1:3O.00",
			} {
				_, err := timecodec.Parse(in)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)

				var fe *timecodec.FormatError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Input, ShouldEqual, in)
			}
		})
	})

	Convey("Given a strict codec", t, func() {
		codec := timecodec.New(timecodec.WithStrictSeconds())

		Convey("When seconds within the minute exceed 59", func() {
			_, err := codec.Parse("1:75.00")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "below 60")
			})
		})

		Convey("When plain seconds exceed 59", func() {
			d, err := codec.Parse("75.00")

			Convey("Then they are still accepted", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 75.0)
			})
		})

		Convey("When a regular minute time is parsed", func() {
			d, err := codec.Parse("1:59.99")
			So(err, ShouldBeNil)
			So(d, ShouldAlmostEqual, 119.99, 1e-9)
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given durations to display", t, func() {
		cases := map[float64]string{
			65.5:    "1:05.50",
			25.0:    "25.00",
			0:       "0.00",
			9.876:   "9.88",
			59.994:  "59.99",
			59.996:  "1:00.00",
			60:      "1:00.00",
			600.1:   "10:00.10",
			3725.05: "62:05.05",
			-1.5:    "-1.50",
			-61:     "-1:01.00",
			-0.001:  "0.00",
		}
		for in, want := range cases {
			So(timecodec.Format(in), ShouldEqual, want)
		}
	})

	Convey("Given an absent duration", t, func() {
		So(timecodec.FormatOptional(nil), ShouldEqual, timecodec.Placeholder)

		d := 29.8
		So(timecodec.FormatOptional(&d), ShouldEqual, "29.80")
	})
}

func TestRound2(t *testing.T) {
	Convey("Given values with more than two decimals", t, func() {
		So(timecodec.Round2(30.4333), ShouldAlmostEqual, 30.43, 1e-9)
		So(timecodec.Round2(16.666), ShouldAlmostEqual, 16.67, 1e-9)
	})
}

func TestLargeDurations(t *testing.T) {
	Convey("Given durations past the parse limit", t, func() {
		_, err := timecodec.Parse("100000000000000000")
		So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)

		_, err = timecodec.Parse("99999999999999999999999:00")
		So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)
	})

	Convey("Given minutes longer than an int64", t, func() {
		d, err := timecodec.Parse("0000000000000000000000001:05.50")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, 65.5)
	})

	Convey("Given durations near the parse limit", t, func() {
		for _, d := range []float64{9e13, 12345678901.23, 87654321098.76} {
			text := timecodec.Format(d)
			got, err := timecodec.Parse(text)
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, timecodec.Round2(d), 0.02)
		}
		So(timecodec.Format(9e13), ShouldEqual, "1500000000000:00.00")
	})

	Convey("Given durations held only in whole seconds", t, func() {
		So(timecodec.Format(1e17), ShouldEqual, "1666666666666666:40.00")
		So(timecodec.Format(-1e17), ShouldEqual, "-1666666666666666:40.00")
		So(timecodec.Format(float64(1<<55)), ShouldEqual, "600479950316066:08.00")

		huge := timecodec.Format(math.MaxFloat64)
		So(huge, ShouldStartWith, "2996")
		So(huge, ShouldEndWith, ":08.00")
	})
}
