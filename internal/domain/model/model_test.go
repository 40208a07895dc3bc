package model_test

import (
	"testing"
	"time"

	model "github.com/okian/recrai/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCandidateProfileSources(t *testing.T) {
	convey.Convey("Given a candidate with skills, area and summary", t, func() {
		skills := []string{"Go", "SQL"}
		c := model.Candidate{ID: "cv-1", Skills: skills, Area: "Backend", Summary: "APIs"}

		convey.Convey("Then sources are skills followed by area and summary", func() {
			convey.So(c.ProfileSources(), convey.ShouldResemble, []string{"Go", "SQL", "Backend", "APIs"})
		})

		convey.Convey("Then appending to the sources leaves the skills untouched", func() {
			src := c.ProfileSources()
			src[0] = "Rust"
			convey.So(skills[0], convey.ShouldEqual, "Go")
		})
	})

	convey.Convey("Given a candidate with no optional fields", t, func() {
		c := model.Candidate{ID: "cv-2"}

		convey.Convey("Then area and summary read as empty strings", func() {
			convey.So(c.ProfileSources(), convey.ShouldResemble, []string{"", ""})
		})
	})
}

func TestCandidateCreated(t *testing.T) {
	convey.Convey("Given creation timestamps in several shapes", t, func() {
		convey.Convey("When the timestamp is RFC3339", func() {
			ts, ok := model.Candidate{CreatedAt: "2025-03-01T10:00:00Z"}.Created()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ts.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
		})

		convey.Convey("When the timestamp has no zone", func() {
			ts, ok := model.Candidate{CreatedAt: "2025-03-01T10:00:00.123456"}.Created()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ts.Day(), convey.ShouldEqual, 1)
		})

		convey.Convey("When the timestamp is blank or garbage", func() {
			_, ok := model.Candidate{}.Created()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = model.Candidate{CreatedAt: "yesterday"}.Created()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
