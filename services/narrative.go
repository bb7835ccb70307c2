package services

import (
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"esgportal/models"
)

const notDisclosed = "Not disclosed."

var narrativeTmpl = template.Must(template.New("narrative").Parse(`# {{.Title}}

{{.Template.Name}} ({{.Template.Jurisdiction}}, {{.Template.Version}})
{{range .Sections}}
## {{.Name}}
{{range .Items}}
**{{.Prompt}}**
{{.Answer}}
{{end}}{{end}}`))

type narrativeSection struct {
	Name  string
	Items []narrativeItem
}

type narrativeItem struct {
	Prompt string
	Answer string
}

// RenderNarrative writes the disclosure text for answers to tpl's questions,
// grouped by section in question order. Unanswered questions are marked.
func RenderNarrative(tpl *models.QuestionnaireTemplate, title string, answers map[string]string) (string, error) {
	var sections []*narrativeSection
	byName := map[string]*narrativeSection{}
	for _, q := range tpl.Questions {
		sec, ok := byName[q.Section]
		if !ok {
			sec = &narrativeSection{Name: q.Section}
			byName[q.Section] = sec
			sections = append(sections, sec)
		}
		sec.Items = append(sec.Items, narrativeItem{Prompt: q.Prompt, Answer: formatAnswer(answers[q.Key])})
	}

	if strings.TrimSpace(title) == "" {
		title = tpl.Name
	}

	var b strings.Builder
	err := narrativeTmpl.Execute(&b, struct {
		Title    string
		Template *models.QuestionnaireTemplate
		Sections []*narrativeSection
	}{title, tpl, sections})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// numericAnswer matches plain or thousands-grouped decimals without leading
// zeros. Anything else is kept as written.
var numericAnswer = regexp.MustCompile(`^-?(0|[1-9]\d{0,2}(,\d{3})+|[1-9]\d*)(\.\d+)?$`)

// formatAnswer trims free text and normalizes numeric answers.
func formatAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return notDisclosed
	}
	if f, ok := toFloat64(s); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

func toFloat64(s string) (float64, bool) {
	if !numericAnswer.MatchString(s) {
		return 0, false
	}
	plain := strings.ReplaceAll(s, ",", "")
	// Beyond 15 digits a float64 no longer round-trips the figure.
	if len(plain)-strings.Count(plain, "-")-strings.Count(plain, ".") > 15 {
		return 0, false
	}
	f, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
