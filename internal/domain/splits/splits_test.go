package splits_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/splits"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAttach(t *testing.T) {
	Convey("Given a 100m result with old splits", t, func() {
		result := model.CompetitionResult{
			ID: "r1", OwnerID: "ana", StyleID: "free100", Distance: 100, Duration: 61.2,
			Splits: []model.SplitMarker{{Distance: 50, Duration: 29}},
		}

		Convey("When valid markers are attached", func() {
			markers := []model.SplitMarker{{Distance: 25, Duration: 13.1}, {Distance: 50, Duration: 28.9}, {Distance: 100, Duration: 61.2}}
			got, err := splits.Attach(result, markers)

			Convey("Then a copy with the new markers is returned", func() {
				So(err, ShouldBeNil)
				So(got.Splits, ShouldResemble, markers)
				So(result.Splits, ShouldResemble, []model.SplitMarker{{Distance: 50, Duration: 29}})
			})

			Convey("Then later changes to the input do not leak in", func() {
				markers[0].Duration = 99
				So(got.Splits[0].Duration, ShouldEqual, 13.1)
			})
		})

		Convey("When no markers are attached", func() {
			got, err := splits.Attach(result, nil)
			So(err, ShouldBeNil)
			So(got.Splits, ShouldBeNil)
		})

		Convey("When markers decrease", func() {
			_, err := splits.Attach(result, []model.SplitMarker{{Distance: 100}, {Distance: 50}})

			Convey("Then an ordering error is returned", func() {
				So(errors.Is(err, splits.ErrOrdering), ShouldBeTrue)
				var oe *splits.OrderingError
				So(errors.As(err, &oe), ShouldBeTrue)
				So(oe.Index, ShouldEqual, 1)
				So(oe.Kind(), ShouldEqual, "order")
			})
		})

		Convey("When markers repeat a distance", func() {
			_, err := splits.Attach(result, []model.SplitMarker{{Distance: 50}, {Distance: 50}})

			Convey("Then it is reported as a duplicate", func() {
				So(errors.Is(err, splits.ErrOrdering), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "duplicate")
				var oe *splits.OrderingError
				So(errors.As(err, &oe), ShouldBeTrue)
				So(oe.Kind(), ShouldEqual, "duplicate")
			})
		})

		Convey("When a marker is out of range", func() {
			cases := [][]model.SplitMarker{
				{{Distance: 0}},
				{{Distance: -25}},
				{{Distance: 50}, {Distance: 150}},
				{{Distance: 50, Duration: -1}},
				{{Distance: 50, Duration: math.NaN()}},
			}
			for _, markers := range cases {
				got, err := splits.Attach(result, markers)
				So(errors.Is(err, splits.ErrRange), ShouldBeTrue)
				So(errors.Is(err, splits.ErrOrdering), ShouldBeFalse)
				So(got.Splits, ShouldResemble, result.Splits)
			}
		})
	})

	Convey("Given a result without a known race distance", t, func() {
		result := model.CompetitionResult{ID: "r2", OwnerID: "ana", StyleID: "free", Duration: 300}

		Convey("Then long markers are accepted", func() {
			got, err := splits.Attach(result, []model.SplitMarker{{Distance: 200, Duration: 140}, {Distance: 400, Duration: 290}})
			So(err, ShouldBeNil)
			So(len(got.Splits), ShouldEqual, 2)
		})
	})
}
