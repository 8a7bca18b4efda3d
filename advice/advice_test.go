package advice

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/liamcoop/healthrisk/predict"
)

func TestSelect(t *testing.T) {
	testCases := []struct {
		name  string
		label predict.Label
		found bool
		want  State
	}{
		{"no prediction", "", false, NoResult},
		{"label ignored when not found", predict.AtRisk, false, NoResult},
		{"at risk", predict.AtRisk, true, AtRisk},
		{"healthy", predict.Healthy, true, Healthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Select(tc.label, tc.found); got != tc.want {
				t.Errorf("Select(%q, %v) = %s, want %s", tc.label, tc.found, got, tc.want)
			}
		})
	}
}

func TestRenderAtRiskIncludesSpecialists(t *testing.T) {
	page := Render(predict.AtRisk, true)
	text := page.Text()

	for _, specialist := range []string{"Endocrinologist", "Dietitian/Nutritionist", "Ophthalmologist"} {
		if !strings.Contains(text, specialist) {
			t.Errorf("at-risk advice should mention %s", specialist)
		}
	}
	if !strings.Contains(text, "Exercise at least 30 minutes daily") {
		t.Error("at-risk advice should include the lifestyle checklist")
	}
	if strings.Contains(text, "Maintenance Tips") {
		t.Error("at-risk advice should not include the maintenance checklist")
	}
}

func TestRenderHealthyIncludesMaintenance(t *testing.T) {
	page := Render(predict.Healthy, true)

	want := []Section{{Heading: "Maintenance Tips", Items: maintenanceTips}}
	if diff := cmp.Diff(want, page.Sections); diff != "" {
		t.Errorf("healthy sections mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(page.Text(), "Endocrinologist") {
		t.Error("healthy advice should not list specialists")
	}
}

func TestRenderNoResultShowsOnlyWarning(t *testing.T) {
	page := Render("", false)

	if page.State != NoResult {
		t.Errorf("expected no_result state, got %s", page.State)
	}
	if !strings.Contains(page.Headline, "make a prediction first") {
		t.Errorf("expected warning headline, got %q", page.Headline)
	}
	if len(page.Sections) != 0 {
		t.Errorf("no-result page should carry no advice, got %d sections", len(page.Sections))
	}

	text := page.Text()
	for _, advice := range append(append([]string{}, lifestyleTips...), maintenanceTips...) {
		if strings.Contains(text, advice) {
			t.Errorf("no-result page leaked advice %q", advice)
		}
	}
}

func TestRenderDoesNotShareSlices(t *testing.T) {
	page := Render(predict.AtRisk, true)
	page.Sections[1].Items[0] = "Astrologer"

	again := Render(predict.AtRisk, true)
	if again.Sections[1].Items[0] == "Astrologer" {
		t.Error("Render() should return independent copies of the static content")
	}
}

func TestResultMessage(t *testing.T) {
	if !strings.Contains(ResultMessage(predict.AtRisk), "At Risk") {
		t.Error("at-risk message should say At Risk")
	}
	if !strings.Contains(ResultMessage(predict.Healthy), "Healthy") {
		t.Error("healthy message should say Healthy")
	}
}

func TestAbout(t *testing.T) {
	about := About()
	if about.Accuracy == "" || about.ModelType == "" || about.Developer == "" {
		t.Errorf("about page is missing fields: %+v", about)
	}
	if !strings.Contains(about.Dataset, "PIMA") {
		t.Errorf("expected PIMA dataset attribution, got %q", about.Dataset)
	}
}
