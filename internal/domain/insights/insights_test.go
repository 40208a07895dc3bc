package insights_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okian/recrai/internal/domain/insights"
	"github.com/okian/recrai/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreHistogram(t *testing.T) {
	Convey("Given candidates with scores on mixed scales", t, func() {
		cands := []model.Candidate{
			{Score: 9},     // 90
			{Score: "95"},  // 90-99
			{Score: 100},   // 100
			{Score: "abc"}, // 0
			{Score: 42},    // 40-49
		}
		h := insights.ScoreHistogram(cands)

		Convey("Then there are eleven labelled bins", func() {
			So(len(h), ShouldEqual, 11)
			So(h[0].Label, ShouldEqual, "0-9")
			So(h[9].Label, ShouldEqual, "90-99")
			So(h[10].Label, ShouldEqual, "100")
		})

		Convey("Then every candidate lands in one bin", func() {
			So(h[0].Count, ShouldEqual, 1)
			So(h[4].Count, ShouldEqual, 1)
			So(h[9].Count, ShouldEqual, 2)
			So(h[10].Count, ShouldEqual, 1)
		})
	})
}

func TestAreaBreakdown(t *testing.T) {
	Convey("Given more areas than the donut shows", t, func() {
		var cands []model.Candidate
		for i, n := range []int{5, 4, 3, 3, 2, 2, 1, 1} {
			for j := 0; j < n; j++ {
				cands = append(cands, model.Candidate{Area: fmt.Sprintf("area-%d", i)})
			}
		}
		cands = append(cands, model.Candidate{Area: "  "})
		got := insights.AreaBreakdown(cands)

		Convey("Then the top six are kept and the rest is folded into Outros", func() {
			So(len(got), ShouldEqual, 7)
			So(got[0], ShouldResemble, insights.Bucket{Label: "area-0", Count: 5})
			So(got[2].Label, ShouldEqual, "area-2")
			So(got[3].Label, ShouldEqual, "area-3")
			So(got[6], ShouldResemble, insights.Bucket{Label: insights.OtherArea, Count: 3})
		})
	})

	Convey("Given no candidates", t, func() {
		So(insights.AreaBreakdown(nil), ShouldResemble, []insights.Bucket{})
	})
}

func TestTopSkills(t *testing.T) {
	Convey("Given skills repeated across candidates", t, func() {
		cands := []model.Candidate{
			{Skills: []string{"Go", "SQL"}},
			{Skills: []string{"SQL", "React"}},
			{Skills: []string{"SQL", "Go"}},
		}

		Convey("Then the most frequent come first and ties keep first-seen order", func() {
			So(insights.TopSkills(cands, 2), ShouldResemble, []insights.Bucket{
				{Label: "SQL", Count: 3},
				{Label: "Go", Count: 2},
			})
		})
	})
}

func TestDailyIntake(t *testing.T) {
	Convey("Given candidates created over several weeks", t, func() {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		cands := []model.Candidate{
			{CreatedAt: "2025-06-15T08:00:00Z"},
			{CreatedAt: "2025-06-14T10:00:00Z"},
			{CreatedAt: "2025-06-01T13:00:00Z"},
			{CreatedAt: "2025-05-01T00:00:00Z"},
			{CreatedAt: "2025-07-01T00:00:00Z"},
			{CreatedAt: "not a date"},
			{},
		}
		series := insights.DailyIntake(cands, now)

		Convey("Then the series is oldest first and ignores out-of-window dates", func() {
			So(len(series), ShouldEqual, insights.IntakeDays)
			So(series[13], ShouldEqual, 2)
			So(series[12], ShouldEqual, 1)
			So(series[0], ShouldEqual, 1)
			total := 0
			for _, n := range series {
				total += n
			}
			So(total, ShouldEqual, 4)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given jobs and candidates tied to jobs", t, func() {
		jobs := []model.Job{{ID: "j1"}, {ID: "j2"}}
		cands := []model.Candidate{
			{ID: "a", JobID: "j1", Area: "Data", Score: 8},
			{ID: "b", JobID: "j2", Area: "Web", Score: 70},
			{ID: "c", JobID: "j1", Area: "Data", Score: 9},
		}
		now := time.Now()

		Convey("When scoped to one job", func() {
			d := insights.Build(jobs, cands, "j1", now)

			Convey("Then only that job's candidates count", func() {
				So(d.Talents, ShouldEqual, 2)
				So(d.Jobs, ShouldEqual, 2)
				So(d.Areas, ShouldResemble, []insights.Bucket{{Label: "Data", Count: 2}})
			})
		})

		Convey("When not scoped", func() {
			d := insights.Build(jobs, cands, "", now)

			Convey("Then everyone counts", func() {
				So(d.Talents, ShouldEqual, 3)
				So(d.DailyIntake[13], ShouldEqual, 3)
			})
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given two candidates to compare", t, func() {
		table := insights.Compare([]model.Candidate{
			{ID: "a", Name: "Ana", Score: 8, Skills: []string{"Go", "SQL", "K8s", "Rust"}, Strengths: []string{"Ownership"}},
			{ID: "b", Score: 65, FinalRecommendations: "Hire"},
		})

		Convey("Then columns fall back to a default name", func() {
			So(table.Columns, ShouldResemble, []string{"Ana", "Talento"})
			So(table.IDs, ShouldResemble, []string{"a", "b"})
		})

		Convey("Then the score row flags the best", func() {
			So(table.Rows[0].Values, ShouldResemble, []string{"80", "65"})
			So(table.Rows[0].Best, ShouldResemble, []bool{true, false})
		})

		Convey("Then skills are cut to three and blanks are filled", func() {
			So(table.Rows[1].Values[0], ShouldEqual, "Go, SQL, K8s")
			So(table.Rows[2].Values, ShouldResemble, []string{"Ownership", ""})
			So(table.Rows[3].Values, ShouldResemble, []string{"—", "Hire"})
		})
	})
}
