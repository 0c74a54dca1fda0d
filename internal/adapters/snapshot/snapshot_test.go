package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/hoofprint/hoofprint/internal/adapters/snapshot"
	"github.com/hoofprint/hoofprint/internal/domain/analytics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryStore(t *testing.T) {
	Convey("Given an empty snapshot store", t, func() {
		s := snapshot.NewInMemoryStore()
		ctx := context.Background()

		Convey("When loading before any save", func() {
			_, err := s.Load(ctx)

			Convey("Then it should report no snapshot", func() {
				So(err, ShouldEqual, snapshot.ErrNoSnapshot)
			})
		})

		Convey("When saving and loading a snapshot", func() {
			snap := &analytics.Snapshot{
				ByTrail:     []analytics.TrailBucket{{TrailID: "t1", TrailName: "Ridge Loop", Registrations: 3, Horses: 5}},
				GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}
			So(s.Save(ctx, snap), ShouldBeNil)

			loaded, err := s.Load(ctx)

			Convey("Then the loaded copy should match", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, snap)
			})

			Convey("And mutating the loaded copy should not leak back", func() {
				loaded.ByTrail[0].Horses = 99
				fresh, err := s.Load(ctx)
				So(err, ShouldBeNil)
				So(fresh.ByTrail[0].Horses, ShouldEqual, 5)
			})
		})

		Convey("When saving twice", func() {
			first := &analytics.Snapshot{GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
			second := &analytics.Snapshot{GeneratedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
			So(s.Save(ctx, first), ShouldBeNil)
			So(s.Save(ctx, second), ShouldBeNil)

			Convey("Then the later snapshot should win wholesale", func() {
				loaded, err := s.Load(ctx)
				So(err, ShouldBeNil)
				So(loaded.GeneratedAt, ShouldEqual, second.GeneratedAt)
			})
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then operations should surface the context error", func() {
				So(s.Save(cancelled, &analytics.Snapshot{}), ShouldEqual, context.Canceled)
				_, err := s.Load(cancelled)
				So(err, ShouldEqual, context.Canceled)
			})
		})
	})
}
