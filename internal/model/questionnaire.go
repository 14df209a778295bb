package model

import "time"

// QuestionnaireStatus is the publication state of a questionnaire version
type QuestionnaireStatus string

const (
	QuestionnaireDraft     QuestionnaireStatus = "draft"
	QuestionnairePublished QuestionnaireStatus = "published"
)

// Questionnaire is one immutable version of a field-survey questionnaire.
// Publishing never mutates an existing version; it writes a new one, so
// interviews already bound to an older version keep a stable graph.
type Questionnaire struct {
	ID              string              `json:"id" bson:"_id,omitempty"`
	QuestionnaireID string              `json:"questionnaireId" bson:"questionnaireId"` // stable across versions
	Titre           string              `json:"titre" bson:"titre"`
	Version         int                 `json:"version" bson:"version"`
	Statut          QuestionnaireStatus `json:"statut" bson:"statut"`
	Volets          []Volet             `json:"volets" bson:"volets"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Volet is a top-level thematic chapter of the questionnaire
type Volet struct {
	Titre    string    `json:"titre" bson:"titre"`
	Ordre    int       `json:"ordre" bson:"ordre"` // unique within the questionnaire, 1-based
	Sections []Section `json:"sections" bson:"sections"`
}

// Section is an ordered grouping of questions within a volet
type Section struct {
	Titre     string     `json:"titre" bson:"titre"`
	Ordre     int        `json:"ordre" bson:"ordre"` // unique within the volet, 1-based
	Questions []Question `json:"questions" bson:"questions"`
}

// FlattenQuestions returns every question of the questionnaire with its
// volet/section ordering metadata filled in, in document order.
func (q *Questionnaire) FlattenQuestions() []Question {
	var out []Question
	for _, v := range q.Volets {
		for _, s := range v.Sections {
			for _, question := range s.Questions {
				question.VoletOrdre = v.Ordre
				question.SectionOrdre = s.Ordre
				out = append(out, question)
			}
		}
	}
	return out
}
