package advice

// AboutPage is the fixed descriptive content of the About view
type AboutPage struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Dataset   string   `json:"dataset"`
	TechStack []string `json:"techStack"`
	ModelType string   `json:"modelType"`
	Accuracy  string   `json:"accuracy"`
	Developer string   `json:"developer"`
}

// About returns the About view content
func About() AboutPage {
	return AboutPage{
		Title:   "About This App",
		Summary: "This app uses a machine learning model to predict the likelihood of diabetes from key medical parameters.",
		Dataset: "PIMA Indian Diabetes Dataset",
		TechStack: []string{
			"Go HTTP server (frontend and API)",
			"Scikit-learn (model training)",
			"NumPy, Pandas (data processing)",
			"JSON model artifacts (model serialization)",
		},
		ModelType: "Logistic Regression / Random Forest",
		Accuracy:  "~78-82% (depending on training parameters)",
		Developer: "Bharti Saini",
	}
}
