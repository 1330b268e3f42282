package insight_test

import (
	"errors"
	"testing"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/insight"
	"github.com/okian/churnboard/internal/domain/predict"
	. "github.com/smartystreets/goconvey/convey"
)

func fixtureTable() *employee.Table {
	return employee.NewTable([]employee.Record{
		{SatisfactionLevel: 0.38, LastEvaluation: 0.53, NumberProject: 2, Left: 1},
		{SatisfactionLevel: 0.80, LastEvaluation: 0.86, NumberProject: 5, Left: 1},
		{SatisfactionLevel: 0.11, LastEvaluation: 0.88, NumberProject: 7, Left: 1},
		{SatisfactionLevel: 0.72, LastEvaluation: 0.87, NumberProject: 5, Left: 1},
		{SatisfactionLevel: 0.58, LastEvaluation: 0.74, NumberProject: 4, Left: 0},
		{SatisfactionLevel: 0.82, LastEvaluation: 0.67, NumberProject: 2, Left: 0},
		{SatisfactionLevel: 0.45, LastEvaluation: 0.69, NumberProject: 5, Left: 0},
	})
}

func TestRender(t *testing.T) {
	Convey("Given a renderer over the historical table", t, func() {
		table := fixtureTable()
		r := insight.NewRenderer(table, insight.WithGridSize(50))

		Convey("When rendering a churn prediction", func() {
			in, err := r.Render(predict.Churned)

			Convey("Then only churned rows are described, with the churn narrative", func() {
				So(err, ShouldBeNil)
				So(in.Verdict, ShouldEqual, "Churn")
				So(in.Heading, ShouldEqual, "Churned Employees: Key Insights")
				So(in.SubsetSize, ShouldEqual, 4)
				So(in.Satisfaction.N, ShouldEqual, 4)
				So(in.Evaluation.N, ShouldEqual, 4)
				So(in.Projects.Total(), ShouldEqual, 4)
				So(in.Narrative, ShouldResemble, insight.NarrativeFor(predict.Churned))
				So(in.Narrative.Title, ShouldEqual, "Summary for Churned Employees")
				So(in.Satisfaction.Density, ShouldHaveLength, 50)
			})

			Convey("And project counts are ordered by value", func() {
				So(in.Projects.Categories, ShouldResemble, []insight.CategoryCount{
					{Value: 2, Count: 1}, {Value: 5, Count: 2}, {Value: 7, Count: 1},
				})
			})
		})

		Convey("When rendering a retention prediction", func() {
			in, err := r.Render(predict.Retained)

			So(err, ShouldBeNil)
			So(in.Verdict, ShouldEqual, "No Churn")
			So(in.SubsetSize, ShouldEqual, 3)
			So(in.Narrative.Title, ShouldEqual, "Summary for Non-Churned Employees")
		})

		Convey("When rendering an invalid label", func() {
			_, err := r.Render(predict.Label(5))
			So(errors.Is(err, insight.ErrInvalidLabel), ShouldBeTrue)
		})

		Convey("Then the two partitions split the table exactly", func() {
			churned := r.Partition(predict.Churned)
			retained := r.Partition(predict.Retained)
			So(len(churned)+len(retained), ShouldEqual, table.Len())
			for _, rec := range churned {
				So(rec.Left, ShouldEqual, 1)
			}
			for _, rec := range retained {
				So(rec.Left, ShouldEqual, 0)
			}
		})
	})

	Convey("Given an empty outcome group", t, func() {
		table := employee.NewTable([]employee.Record{{SatisfactionLevel: 0.4, Left: 0}})
		in, err := insight.NewRenderer(table).Render(predict.Churned)

		Convey("Then the views are empty but the narrative is still chosen", func() {
			So(err, ShouldBeNil)
			So(in.SubsetSize, ShouldEqual, 0)
			So(in.Satisfaction.Bins, ShouldBeEmpty)
			So(in.Projects.Categories, ShouldBeEmpty)
			So(in.Narrative.Title, ShouldEqual, "Summary for Churned Employees")
		})
	})
}

func TestNarrativeFor(t *testing.T) {
	Convey("Narratives are copies", t, func() {
		n := insight.NarrativeFor(predict.Churned)
		n.Points[0] = "edited"
		So(insight.NarrativeFor(predict.Churned).Points[0], ShouldNotEqual, "edited")
	})

	Convey("Narrative wording is fixed per label", t, func() {
		churn := insight.NarrativeFor(predict.Churned)
		So(churn.Points, ShouldHaveLength, 3)
		So(churn.Points[2], ShouldEqual, "The XGBoost classifier effectively identifies churn patterns based on these factors and helps predict which employees are at risk of leaving.")

		stay := insight.NarrativeFor(predict.Retained)
		So(stay.Points, ShouldHaveLength, 3)
		So(stay.Points[2], ShouldEqual, "The XGBoost classifier correctly identifies these patterns to predict employees who are less likely to leave the company.")
	})
}
