package service

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSequencer(t *testing.T) {
	Convey("Given a sequencer", t, func() {
		q := newSequencer()
		ctx := context.Background()

		Convey("When later turns arrive first", func() {
			var (
				mu    sync.Mutex
				order []uint64
				wg    sync.WaitGroup
			)
			for _, seq := range []uint64{4, 2, 3, 1, 0} {
				wg.Add(1)
				go func(seq uint64) {
					defer wg.Done()
					if err := q.wait(ctx, seq); err != nil {
						return
					}
					mu.Lock()
					order = append(order, seq)
					mu.Unlock()
					q.done(seq)
				}(seq)
			}
			wg.Wait()

			Convey("Then they are admitted in sequence", func() {
				So(order, ShouldResemble, []uint64{0, 1, 2, 3, 4})
			})
		})

		Convey("When a waiter's context ends before its turn", func() {
			waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := q.wait(waitCtx, 1)

			Convey("Then it gives up and the turn is not consumed", func() {
				So(err, ShouldEqual, context.DeadlineExceeded)
				So(q.wait(ctx, 0), ShouldBeNil)
				q.done(0)
				So(q.wait(ctx, 1), ShouldBeNil)
			})
		})
	})
}
