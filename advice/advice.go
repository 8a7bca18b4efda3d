// Package advice selects and renders the static precautions content for a
// session's prediction result, plus the fixed About page.
package advice

import (
	"strings"

	"github.com/liamcoop/healthrisk/predict"
)

// State is the renderer's view of the session result
type State string

const (
	NoResult State = "no_result"
	AtRisk   State = "at_risk"
	Healthy  State = "healthy"
)

// Section is a headed checklist
type Section struct {
	Heading string   `json:"heading"`
	Items   []string `json:"items"`
}

// Page is the rendered precautions view
type Page struct {
	State    State     `json:"state"`
	Title    string    `json:"title"`
	Headline string    `json:"headline"`
	Sections []Section `json:"sections,omitempty"`
}

const pageTitle = "Health Precautions & Doctor Advice"

// Specialists recommended to at-risk users
var Specialists = []string{
	"Endocrinologist (for diabetes management)",
	"Dietitian/Nutritionist (for meal planning)",
	"Ophthalmologist (for eye checkups)",
}

var lifestyleTips = []string{
	"Eat more fiber-rich foods like vegetables and whole grains",
	"Avoid sugary drinks and junk food",
	"Exercise at least 30 minutes daily",
	"Monitor blood glucose regularly",
	"Maintain a healthy weight",
	"Manage stress through yoga or meditation",
}

var maintenanceTips = []string{
	"Eat balanced meals",
	"Stay physically active",
	"Avoid smoking and alcohol",
	"Get regular checkups",
	"Drink plenty of water",
	"Sleep 7-8 hours per day",
}

// Select maps the stored result to a renderer state
func Select(label predict.Label, found bool) State {
	if !found {
		return NoResult
	}
	if label == predict.AtRisk {
		return AtRisk
	}
	return Healthy
}

// Render builds the precautions page for the session result.
// found=false means no prediction has been made in this session.
func Render(label predict.Label, found bool) Page {
	state := Select(label, found)

	switch state {
	case AtRisk:
		return Page{
			State:    AtRisk,
			Title:    pageTitle,
			Headline: "You are at risk for diabetes. Please follow these precautions:",
			Sections: []Section{
				{Heading: "Lifestyle & Diet Tips", Items: clone(lifestyleTips)},
				{Heading: "Recommended Doctors", Items: clone(Specialists)},
			},
		}
	case Healthy:
		return Page{
			State:    Healthy,
			Title:    pageTitle,
			Headline: "You are healthy! Keep maintaining a good lifestyle.",
			Sections: []Section{
				{Heading: "Maintenance Tips", Items: clone(maintenanceTips)},
			},
		}
	default:
		return Page{
			State:    NoResult,
			Title:    pageTitle,
			Headline: "Please go to the Home page and make a prediction first.",
		}
	}
}

// ResultMessage is the banner shown on the Home page right after Predict
func ResultMessage(label predict.Label) string {
	if label == predict.AtRisk {
		return "Result: At Risk. The model predicts that the patient is likely to have diabetes."
	}
	return "Result: Healthy. The model predicts that the patient is not likely to have diabetes."
}

// Text flattens a page into plain text, one line per entry
func (p Page) Text() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	b.WriteString(p.Headline)
	b.WriteString("\n")
	for _, s := range p.Sections {
		b.WriteString("\n")
		b.WriteString(s.Heading)
		b.WriteString(":\n")
		for _, item := range s.Items {
			b.WriteString("  - ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clone(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
