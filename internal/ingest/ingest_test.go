package ingest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/timecodec"
	"github.com/okian/swimstats/internal/ingest"
	. "github.com/smartystreets/goconvey/convey"
)

const sheetYAML = `
session: tue-am
circle: "0:35.00"
sets: 2
reps: 3
attempts:
  ben:
    1:
      1: 31.40
  ana:
    2:
      1: "30.9"
    1:
      2: "31.0"
      1: 30.5
      3:
`

const sheetJSON = `{
  "session": "wed-pm",
  "attempts": {"ana": {"1": {"1": "1:05.50", "2": ""}}}
}`

func TestDecodeAttempts(t *testing.T) {
	Convey("Given a YAML training sheet", t, func() {
		doc, err := ingest.DecodeAttempts(strings.NewReader(sheetYAML))
		So(err, ShouldBeNil)

		Convey("Then the header is decoded", func() {
			So(doc.SessionID, ShouldEqual, "tue-am")
			So(string(doc.Circle), ShouldEqual, "0:35.00")
			So(doc.Sets, ShouldEqual, 2)
			So(doc.Reps, ShouldEqual, 3)
		})

		Convey("When the sheet is flattened", func() {
			bulk, err := doc.Bulk()
			So(err, ShouldBeNil)
			entries, skipped := bulk.Entries()

			Convey("Then entries come in owner, set, rep order with source text kept", func() {
				So(skipped, ShouldEqual, 1)
				So(len(entries), ShouldEqual, 4)
				So(entries[0], ShouldResemble, ingest.Entry{OwnerID: "ana", SetNumber: 1, RepNumber: 1, Text: "30.5"})
				So(entries[1].Ref(), ShouldEqual, "ana/1/2")
				So(entries[2].Ref(), ShouldEqual, "ana/2/1")
				So(entries[3], ShouldResemble, ingest.Entry{OwnerID: "ben", SetNumber: 1, RepNumber: 1, Text: "31.40"})
			})
		})
	})

	Convey("Given a JSON training sheet", t, func() {
		doc, err := ingest.DecodeAttempts(strings.NewReader(sheetJSON))
		So(err, ShouldBeNil)

		bulk, err := doc.Bulk()
		So(err, ShouldBeNil)
		entries, skipped := bulk.Entries()

		So(doc.SessionID, ShouldEqual, "wed-pm")
		So(doc.Circle.Blank(), ShouldBeTrue)
		So(skipped, ShouldEqual, 1)
		So(len(entries), ShouldEqual, 1)
		So(entries[0].Text, ShouldEqual, "1:05.50")
	})

	Convey("Given malformed sheets", t, func() {
		_, err := ingest.DecodeAttempts(strings.NewReader(""))
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)

		_, err = ingest.DecodeAttempts(strings.NewReader("attempts: [1, 2]"))
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)

		_, err = ingest.DecodeAttempts(strings.NewReader("attempts: {ana: {1: {1: [30]}}}"))
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)

		doc, err := ingest.DecodeAttempts(strings.NewReader("attempts: {ana: {first: {1: 30}}}"))
		So(err, ShouldBeNil)
		_, err = doc.Bulk()
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "first")

		doc, err = ingest.DecodeAttempts(strings.NewReader("attempts: {ana: {1: {x: 30}}}"))
		So(err, ShouldBeNil)
		_, err = doc.Bulk()
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)
	})
}

const aliasedSheet = `
attempts:
  ana:
    "1": {"1": "30.0", "2": "31.0"}
    "01": {"3": "32.0"}
`

const aliasedReps = `
attempts:
  bob:
    "1": {"1": "40.0", "+1": "41.0"}
`

func TestAttemptDocument_AliasedKeys(t *testing.T) {
	Convey("Given a sheet whose set keys name the same set", t, func() {
		doc, err := ingest.DecodeAttempts(strings.NewReader(aliasedSheet))
		So(err, ShouldBeNil)

		Convey("When it is flattened", func() {
			bulk, err := doc.Bulk()

			Convey("Then the duplicate is reported instead of dropping attempts", func() {
				So(bulk, ShouldBeNil)
				So(errors.Is(err, model.ErrDuplicateAttempt), ShouldBeTrue)
				So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"01"`)
				So(err.Error(), ShouldContainSubstring, `"1"`)
			})
		})
	})

	Convey("Given a sheet whose rep keys name the same rep", t, func() {
		doc, err := ingest.DecodeAttempts(strings.NewReader(aliasedReps))
		So(err, ShouldBeNil)

		_, err = doc.Bulk()
		So(errors.Is(err, model.ErrDuplicateAttempt), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, `"+1"`)
	})
}

const resultsYAML = `
results:
  - id: "1"
    owner_id: ana
    style_id: free100
    event_id: meet-1
    distance: 100
    time: "1:01.20"
    splits:
      - {distance: 50, time: "29.10"}
      - {distance: 100, time: "1:01.20"}
  - owner_id: ben
    style_id: free100
    event_id: meet-1
    time: 59.99
  - id: "3"
    owner_id: cat
    style_id: free100
    event_id: meet-1
    time: "fast"
`

func TestDecodeResults(t *testing.T) {
	Convey("Given a result document", t, func() {
		doc, err := ingest.DecodeResults(strings.NewReader(resultsYAML))
		So(err, ShouldBeNil)
		So(len(doc.Results), ShouldEqual, 3)
		codec := timecodec.New()

		Convey("When a record with splits is converted", func() {
			sub, err := doc.Results[0].Submission(codec)

			Convey("Then times are parsed", func() {
				So(err, ShouldBeNil)
				So(sub.Result.Duration, ShouldAlmostEqual, 61.2, 1e-9)
				So(sub.Result.Distance, ShouldEqual, 100)
				So(len(sub.Splits), ShouldEqual, 2)
				So(sub.Splits[0].Distance, ShouldEqual, 50)
				So(sub.Splits[0].Duration, ShouldAlmostEqual, 29.1, 1e-9)
				So(sub.Result.Splits, ShouldBeNil)
			})
		})

		Convey("When a record without id is converted", func() {
			sub, err := doc.Results[1].Submission(codec)
			So(err, ShouldBeNil)
			So(sub.Result.ID, ShouldBeEmpty)
			So(sub.Result.Duration, ShouldAlmostEqual, 59.99, 1e-9)
			So(doc.Results[1].Ref(1), ShouldEqual, "#1")
		})

		Convey("When a record has a malformed time", func() {
			_, err := doc.Results[2].Submission(codec)
			So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)
			So(doc.Results[2].Ref(2), ShouldEqual, "3")
		})
	})

	Convey("Given a record with a blank time", t, func() {
		_, err := ingest.ResultRecord{ID: "x"}.Submission(timecodec.New())
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)
	})

	Convey("Given a record with a malformed split", t, func() {
		rec := ingest.ResultRecord{ID: "x", Time: "30.00", Splits: []ingest.SplitRecord{{Distance: 25, Time: "ab"}}}
		_, err := rec.Submission(timecodec.New())
		So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "split 0")
	})

	Convey("Given an empty result document", t, func() {
		_, err := ingest.DecodeResults(strings.NewReader(""))
		So(errors.Is(err, ingest.ErrDocument), ShouldBeTrue)
	})
}

func TestRecordError(t *testing.T) {
	Convey("Given a wrapped record error", t, func() {
		err := &ingest.RecordError{Ref: "ana/1/1", Err: timecodec.ErrFormat}
		So(err.Error(), ShouldStartWith, "ana/1/1: ")
		So(errors.Is(err, timecodec.ErrFormat), ShouldBeTrue)
	})
}
