package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/recrai/internal/adapters/prefs"
	"github.com/okian/recrai/internal/adapters/recruitapi"
	service "github.com/okian/recrai/internal/app"
	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/internal/domain/model"
)

// fakeSource is an in-memory Source that can refuse deletes.
type fakeSource struct {
	mu           sync.Mutex
	jobs         []model.Job
	cands        []model.Candidate
	refuseDelete bool
	failList     error
}

func (f *fakeSource) ListJobs(context.Context) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Job(nil), f.jobs...), nil
}

func (f *fakeSource) ListCandidates(context.Context) ([]model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]model.Candidate(nil), f.cands...), nil
}

func (f *fakeSource) GetCandidate(_ context.Context, id string) (model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cands {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Candidate{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
}

func (f *fakeSource) DeleteCandidate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuseDelete {
		return errors.New("405 method not allowed")
	}
	for i, c := range f.cands {
		if c.ID == id {
			f.cands = append(f.cands[:i], f.cands[i+1:]...)
			return nil
		}
	}
	return nil
}

func seeded() *fakeSource {
	return &fakeSource{
		jobs: []model.Job{
			{ID: "fullstack", Title: "Full Stack", Requirements: []string{"React", "Node.js", "Docker"}},
			{ID: "data", Title: "Data", Requirements: []string{"Pandas", "Scikit-learn", "MLOps"}},
		},
		cands: []model.Candidate{
			{ID: "a", Name: "Ana", Skills: []string{"react"}, Score: 9, JobID: "fullstack", Area: "Web"},
			{ID: "b", Name: "Bruno", Skills: []string{"react", "nodejs", "docker"}, Score: 60, JobID: "fullstack", Area: "Web"},
			{ID: "c", Name: "Carla", Skills: []string{"react"}, Score: "90", Area: "Web"},
			{ID: "d", Name: "Davi", Skills: []string{"pandas", "scikit-learn"}, Score: 8, JobID: "data", Area: "Data"},
		},
	}
}

func started(t *testing.T, src service.Source, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(src, append([]service.Option{service.WithWorkerCount(2)}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(seeded(), service.WithWorkerCount(3), service.WithQueueSize(16))

		Convey("Then it is not started and ranking is refused", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
			_, _, err := svc.RankForJob(context.Background(), "fullstack", 0)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("When started twice and stopped twice", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then stats reflect the configuration", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 3)
				So(stats["queueSize"], ShouldEqual, 16)
				So(stats["matchMode"], ShouldEqual, "substring")
				So(stats["queueLength"], ShouldEqual, 0)
			})

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

// brokenStore fails every read.
type brokenStore struct{ *prefs.MemoryStore }

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func TestService_StartContext(t *testing.T) {
	Convey("Given a service started with a context that is later canceled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		svc := service.New(seeded(), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()
		cancel()
		time.Sleep(20 * time.Millisecond)

		Convey("When a ranking is requested afterwards", func() {
			reqCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_, ranks, err := svc.RankForJob(reqCtx, "fullstack", 0)

			Convey("Then the pool still answers", func() {
				So(err, ShouldBeNil)
				So(len(ranks), ShouldEqual, 4)
				So(ranks[0].Candidate.ID, ShouldEqual, "b")
			})
		})
	})

	Convey("Given preferences that cannot be read", t, func() {
		m := prefs.NewManager(brokenStore{prefs.NewMemoryStore()})
		svc := service.New(seeded(), service.WithWorkerCount(2), service.WithPreferences(m))

		Convey("When the service is started", func() {
			err := svc.Start(context.Background())

			Convey("Then start fails and leaves nothing running", func() {
				So(err, ShouldNotBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, _, rankErr := svc.RankForJob(context.Background(), "fullstack", 0)
				So(errors.Is(rankErr, service.ErrNotStarted), ShouldBeTrue)
				So(svc.Stop(context.Background()), ShouldBeNil)
			})
		})
	})
}

func TestService_RankForJob(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := started(t, seeded())
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		Convey("When ranking for a job", func() {
			job, ranks, err := svc.RankForJob(ctx, "fullstack", 0)

			Convey("Then candidates come in combined order, ties in input order", func() {
				So(err, ShouldBeNil)
				So(job.Title, ShouldEqual, "Full Stack")
				ids := make([]string, len(ranks))
				for i, r := range ranks {
					ids[i] = r.Candidate.ID
				}
				So(ids, ShouldResemble, []string{"b", "a", "c", "d"})
				So(ranks[0].Combined, ShouldEqual, 84)
			})
		})

		Convey("When a limit is given", func() {
			_, ranks, err := svc.RankForJob(ctx, "fullstack", 2)
			So(err, ShouldBeNil)
			So(len(ranks), ShouldEqual, 2)
		})

		Convey("When the job does not exist", func() {
			_, _, err := svc.RankForJob(ctx, "nope", 0)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a service in token mode", t, func() {
		src := &fakeSource{
			jobs:  []model.Job{{ID: "j", Requirements: []string{"Java"}}},
			cands: []model.Candidate{{ID: "js", Skills: []string{"JavaScript"}, Score: 50}},
		}
		svc := started(t, src, service.WithMatchMode(matching.ModeToken))
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then java does not match javascript", func() {
			_, ranks, err := svc.RankForJob(context.Background(), "j", 0)
			So(err, ShouldBeNil)
			So(ranks[0].Fit, ShouldEqual, 0)
		})
	})

	Convey("Given a source that cannot list candidates", t, func() {
		src := seeded()
		src.failList = errors.New("boom")
		svc := started(t, src)
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then the error is returned", func() {
			_, _, err := svc.RankForJob(context.Background(), "fullstack", 0)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_Suggest(t *testing.T) {
	Convey("Given a data candidate", t, func() {
		svc := started(t, seeded(), service.WithLimits(8, 1))
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then the data job is suggested first and the default limit applies", func() {
			cand, sugg, err := svc.SuggestForCandidate(context.Background(), "d", 0)
			So(err, ShouldBeNil)
			So(cand.Name, ShouldEqual, "Davi")
			So(len(sugg), ShouldEqual, 1)
			So(sugg[0].Job.ID, ShouldEqual, "data")
			So(sugg[0].Fit, ShouldEqual, 67)
			So(sugg[0].Combined, ShouldEqual, 72)
		})

		Convey("Then an unknown candidate is not found", func() {
			_, _, err := svc.SuggestForCandidate(context.Background(), "zzz", 0)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Fit(t *testing.T) {
	Convey("Given requirements and an ad-hoc candidate", t, func() {
		svc := service.New(seeded())
		res := svc.Fit(context.Background(), []string{"React", "Node.js", "SQL"},
			model.Candidate{Skills: []string{"react", "nodejs", "mongodb"}, Score: 85})

		Convey("Then the breakdown and ranking values agree", func() {
			So(res.Fit, ShouldEqual, 67)
			So(res.Hits, ShouldEqual, 2)
			So(res.NormalizedScore, ShouldEqual, 85)
			So(res.Combined, ShouldEqual, 74)
			So(res.Requirements[2].Hit, ShouldBeFalse)
		})
	})
}

func TestService_DeleteAndHide(t *testing.T) {
	Convey("Given a source that supports delete", t, func() {
		src := seeded()
		svc := started(t, src)
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then the candidate is deleted upstream", func() {
			res, err := svc.DeleteCandidate(context.Background(), "a")
			So(err, ShouldBeNil)
			So(res, ShouldResemble, service.DeleteResult{ID: "a", Deleted: true})
			cands, _ := svc.Candidates(context.Background())
			So(len(cands), ShouldEqual, 3)
		})
	})

	Convey("Given a source that refuses delete", t, func() {
		src := seeded()
		src.refuseDelete = true
		svc := started(t, src)
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		res, err := svc.DeleteCandidate(ctx, "b")

		Convey("Then the candidate is hidden locally", func() {
			So(err, ShouldBeNil)
			So(res.Hidden, ShouldBeTrue)
			So(res.Deleted, ShouldBeFalse)
		})

		Convey("Then it disappears from listings and rankings", func() {
			cands, err := svc.Candidates(ctx)
			So(err, ShouldBeNil)
			for _, c := range cands {
				So(c.ID, ShouldNotEqual, "b")
			}
			_, ranks, err := svc.RankForJob(ctx, "fullstack", 0)
			So(err, ShouldBeNil)
			So(len(ranks), ShouldEqual, 3)
			_, err = svc.Candidate(ctx, "b")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then the hidden id is in preferences", func() {
			p, err := svc.Preferences(ctx)
			So(err, ShouldBeNil)
			So(p.HiddenCandidateIDs, ShouldResemble, []string{"b"})
		})
	})

	Convey("Given a blank id", t, func() {
		_, err := service.New(seeded()).DeleteCandidate(context.Background(), " ")
		So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
	})
}

func TestService_DashboardAndCompare(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		svc := started(t, seeded(), service.WithClock(func() time.Time { return now }))
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		Convey("When building the dashboard for one job", func() {
			d, err := svc.Dashboard(ctx, "fullstack")

			Convey("Then only that job's candidates count", func() {
				So(err, ShouldBeNil)
				So(d.Talents, ShouldEqual, 2)
				So(d.Jobs, ShouldEqual, 2)
			})
		})

		Convey("When the dashboard job is unknown", func() {
			_, err := svc.Dashboard(ctx, "nope")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When comparing explicit ids", func() {
			table, err := svc.Compare(ctx, []string{"a", " b ", "a"})

			Convey("Then duplicates are dropped and order is kept", func() {
				So(err, ShouldBeNil)
				So(table.Columns, ShouldResemble, []string{"Ana", "Bruno"})
			})
		})

		Convey("When comparing with the saved list", func() {
			p := prefs.Defaults()
			p.CompareIDs = []string{"c", "d"}
			_, err := svc.SavePreferences(ctx, p)
			So(err, ShouldBeNil)

			table, err := svc.Compare(ctx, nil)
			So(err, ShouldBeNil)
			So(table.IDs, ShouldResemble, []string{"c", "d"})
		})

		Convey("When comparing fewer than two", func() {
			_, err := svc.Compare(ctx, []string{"a"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a compared id is missing", func() {
			_, err := svc.Compare(ctx, []string{"a", "zzz"})
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Preferences(t *testing.T) {
	Convey("Given a service with in-memory preferences", t, func() {
		svc := service.New(seeded())
		ctx := context.Background()

		Convey("Then an invalid theme is rejected", func() {
			p := prefs.Defaults()
			p.Theme = "neon"
			_, err := svc.SavePreferences(ctx, p)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Then valid preferences round-trip cleaned", func() {
			p := prefs.Defaults()
			p.Theme = prefs.ThemeLight
			p.CompareIDs = []string{"a", "", "a", "b"}
			got, err := svc.SavePreferences(ctx, p)
			So(err, ShouldBeNil)
			So(got.Theme, ShouldEqual, prefs.ThemeLight)
			So(got.CompareIDs, ShouldResemble, []string{"a", "b"})
		})
	})
}

func TestService_OptionalCapabilities(t *testing.T) {
	Convey("Given a source without create, analyze or health", t, func() {
		svc := service.New(seeded())
		ctx := context.Background()

		Convey("Then those operations are unsupported and the backend counts as online", func() {
			_, _, err := svc.CreateJob(ctx, model.Job{Title: "x"})
			So(errors.Is(err, service.ErrUnsupported), ShouldBeTrue)
			_, err = svc.Analyze(ctx, recruitapi.AnalyzeRequest{Text: "cv"})
			So(errors.Is(err, service.ErrUnsupported), ShouldBeTrue)
			So(svc.Backend(ctx).Online, ShouldBeTrue)
		})
	})
}
