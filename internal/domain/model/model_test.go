package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/voluntree/voluntree/internal/domain/model"
)

func TestParseCategory(t *testing.T) {
	Convey("Given the closed category set", t, func() {
		Convey("When parsing known values in any case", func() {
			c, err := model.ParseCategory("animals")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, model.CategoryAnimals)

			c, err = model.ParseCategory(" ENVIRONMENT ")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, model.CategoryEnvironment)
		})

		Convey("When parsing an unknown value", func() {
			_, err := model.ParseCategory("gardening")
			So(err, ShouldNotBeNil)
		})

		Convey("Then the enumeration should be complete", func() {
			So(len(model.Categories()), ShouldEqual, 7)
		})
	})
}

func TestInteractionWeights(t *testing.T) {
	Convey("Given interaction types", t, func() {
		Convey("Then each type should carry its fixed weight", func() {
			So(model.InteractionCompleted.Weight(), ShouldEqual, 3)
			So(model.InteractionRegistered.Weight(), ShouldEqual, 2)
			So(model.InteractionInterested.Weight(), ShouldEqual, 1)
			So(model.InteractionViewed.Weight(), ShouldEqual, 0.5)
		})

		Convey("When parsing interaction types", func() {
			ty, err := model.ParseInteractionType("Registered")
			So(err, ShouldBeNil)
			So(ty, ShouldEqual, model.InteractionRegistered)

			_, err = model.ParseInteractionType("liked")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSubmissionStatus(t *testing.T) {
	Convey("Given submission statuses", t, func() {
		Convey("Then only accepted and completed count as attended", func() {
			So(model.SubmissionAccepted.Attended(), ShouldBeTrue)
			So(model.SubmissionCompleted.Attended(), ShouldBeTrue)
			So(model.SubmissionPending.Attended(), ShouldBeFalse)
			So(model.SubmissionRejected.Attended(), ShouldBeFalse)
		})

		Convey("When parsing statuses", func() {
			st, err := model.ParseSubmissionStatus("accepted")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, model.SubmissionAccepted)

			_, err = model.ParseSubmissionStatus("WAITLISTED")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEmbedJobKey(t *testing.T) {
	Convey("Given embed jobs", t, func() {
		Convey("Then the coalescing key should be kind-scoped", func() {
			v := model.EmbedJob{Kind: model.JobVolunteer, TargetID: "v-1"}
			e := model.EmbedJob{Kind: model.JobEvent, TargetID: "v-1"}
			So(v.Key(), ShouldEqual, "volunteer:v-1")
			So(e.Key(), ShouldEqual, "event:v-1")
			So(v.Key(), ShouldNotEqual, e.Key())
		})
	})
}
