package analytics_test

import (
	"testing"
	"time"

	"github.com/hoofprint/hoofprint/internal/domain/analytics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeekNumber(t *testing.T) {
	Convey("Given the Jan-1-anchored week formula", t, func() {
		Convey("Then January 1st is always in week 1", func() {
			// 2024-01-01 is a Monday, 2026-01-01 is a Thursday.
			So(analytics.WeekNumber(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 1)
			So(analytics.WeekNumber(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 1)
		})

		Convey("Then the week boundary follows the weekday of January 1st", func() {
			// 2024-01-01 is a Monday (weekday 1): week 1 covers Jan 1-6,
			// week 2 starts on Sunday Jan 7.
			So(analytics.WeekNumber(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)), ShouldEqual, 1)
			So(analytics.WeekNumber(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2)
		})

		Convey("Then late-December dates land in a high week", func() {
			So(analytics.WeekNumber(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)), ShouldBeGreaterThanOrEqualTo, 53)
		})
	})
}

func TestWeekKeys(t *testing.T) {
	Convey("Given week keys without zero padding", t, func() {
		mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		Convey("Then the key and label formats should match", func() {
			So(analytics.WeekKey(mar), ShouldEqual, "2024-W9")
			So(analytics.WeekLabel(mar), ShouldEqual, "Week 9, 2024")
		})

		Convey("Then numeric comparison orders W9 before W10", func() {
			// Lexicographic comparison would invert these.
			So(analytics.CompareWeekKeys("2024-W9", "2024-W10"), ShouldBeLessThan, 0)
			So(analytics.CompareWeekKeys("2024-W10", "2024-W9"), ShouldBeGreaterThan, 0)
			So(analytics.CompareWeekKeys("2024-W9", "2024-W9"), ShouldEqual, 0)
		})

		Convey("Then years dominate week numbers", func() {
			So(analytics.CompareWeekKeys("2023-W52", "2024-W1"), ShouldBeLessThan, 0)
		})

		Convey("Then malformed keys sort before well-formed ones", func() {
			So(analytics.CompareWeekKeys("garbage", "2024-W1"), ShouldBeLessThan, 0)
			So(analytics.CompareWeekKeys("2024-W1", "garbage"), ShouldBeGreaterThan, 0)
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given registrations across days, weeks and trails", t, func() {
		trails := map[string]analytics.TrailInfo{
			"t1": {Name: "Ridge Loop", Active: true},
			"t2": {Name: "Creek Path", Active: false},
			"t3": {Name: "Summit Run", Active: true},
		}
		regs := []analytics.Registration{
			{TrailID: "t1", HorseCount: 2, At: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
			{TrailID: "t1", HorseCount: 1, At: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)},
			{TrailID: "t2", HorseCount: 4, At: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
			{TrailID: "ghost", HorseCount: 3, At: time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)},
		}
		now := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

		Convey("When computing the snapshot", func() {
			snap := analytics.Compute(regs, trails, now)

			Convey("Then day buckets should be sorted and totalled", func() {
				So(snap.ByDay, ShouldHaveLength, 2)
				So(snap.ByDay[0].Key, ShouldEqual, "2024-03-01")
				So(snap.ByDay[0].Registrations, ShouldEqual, 2)
				So(snap.ByDay[0].Horses, ShouldEqual, 3)
				So(snap.ByDay[1].Key, ShouldEqual, "2024-03-02")
				So(snap.ByDay[1].Registrations, ShouldEqual, 2)
				So(snap.ByDay[1].Horses, ShouldEqual, 7)
			})

			Convey("Then per-trail breakdowns should appear inside time buckets", func() {
				So(snap.ByDay[0].ByTrail["Ridge Loop"], ShouldResemble, analytics.Totals{Registrations: 2, Horses: 3})
				So(snap.ByDay[1].ByTrail["Creek Path"], ShouldResemble, analytics.Totals{Registrations: 1, Horses: 4})
			})

			Convey("Then unresolved trails should be grouped under unknown", func() {
				So(snap.ByDay[1].ByTrail[analytics.UnknownTrailName], ShouldResemble, analytics.Totals{Registrations: 1, Horses: 3})
			})

			Convey("Then trails with no registrations should still be listed", func() {
				So(snap.ByTrail, ShouldHaveLength, 4)
				var summit *analytics.TrailBucket
				for i := range snap.ByTrail {
					if snap.ByTrail[i].TrailID == "t3" {
						summit = &snap.ByTrail[i]
					}
				}
				So(summit, ShouldNotBeNil)
				So(summit.TrailName, ShouldEqual, "Summit Run")
				So(summit.Registrations, ShouldEqual, 0)
				So(summit.AvgHorses, ShouldEqual, 0)
			})

			Convey("Then trail buckets should be sorted by name and carry averages", func() {
				So(snap.ByTrail[0].TrailName, ShouldEqual, "Creek Path")
				So(snap.ByTrail[1].TrailName, ShouldEqual, "Ridge Loop")
				So(snap.ByTrail[1].AvgHorses, ShouldEqual, 1.5)
			})

			Convey("Then the generation time should be stamped", func() {
				So(snap.GeneratedAt, ShouldEqual, now)
			})
		})

		Convey("When computing the snapshot twice over the same input", func() {
			first := analytics.Compute(regs, trails, now)
			second := analytics.Compute(regs, trails, now)

			Convey("Then output should be identical including ordering", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When computing with no registrations", func() {
			snap := analytics.Compute(nil, trails, now)

			Convey("Then time groupings are empty but trails remain", func() {
				So(snap.ByDay, ShouldBeEmpty)
				So(snap.ByWeek, ShouldBeEmpty)
				So(snap.ByMonth, ShouldBeEmpty)
				So(snap.ByTrail, ShouldHaveLength, 3)
			})
		})
	})
}

func TestCompute_WeekOrdering(t *testing.T) {
	Convey("Given registrations spanning single and double digit weeks", t, func() {
		regs := []analytics.Registration{
			{TrailID: "t1", HorseCount: 1, At: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}, // W11
			{TrailID: "t1", HorseCount: 1, At: time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)}, // W9
			{TrailID: "t1", HorseCount: 1, At: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},  // W10
		}
		trails := map[string]analytics.TrailInfo{"t1": {Name: "Ridge Loop", Active: true}}

		Convey("When computing the snapshot", func() {
			snap := analytics.Compute(regs, trails, time.Now())

			Convey("Then week buckets should be in numeric order", func() {
				So(snap.ByWeek, ShouldHaveLength, 3)
				So(snap.ByWeek[0].Key, ShouldEqual, "2024-W9")
				So(snap.ByWeek[1].Key, ShouldEqual, "2024-W10")
				So(snap.ByWeek[2].Key, ShouldEqual, "2024-W11")
			})
		})
	})
}

func TestSnapshot_Clone(t *testing.T) {
	Convey("Given a computed snapshot", t, func() {
		regs := []analytics.Registration{
			{TrailID: "t1", HorseCount: 2, At: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		}
		trails := map[string]analytics.TrailInfo{"t1": {Name: "Ridge Loop", Active: true}}
		snap := analytics.Compute(regs, trails, time.Now())

		Convey("When cloning and mutating the clone", func() {
			clone := snap.Clone()
			clone.ByDay[0].ByTrail["Ridge Loop"] = analytics.Totals{Registrations: 99, Horses: 99}
			clone.ByTrail[0].Horses = 99

			Convey("Then the original should be unaffected", func() {
				So(snap.ByDay[0].ByTrail["Ridge Loop"].Registrations, ShouldEqual, 1)
				So(snap.ByTrail[0].Horses, ShouldEqual, 2)
			})
		})

		Convey("When cloning a nil snapshot", func() {
			var nilSnap *analytics.Snapshot

			Convey("Then the clone should be nil", func() {
				So(nilSnap.Clone(), ShouldBeNil)
			})
		})
	})
}
