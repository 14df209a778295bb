package engine

import "agricensus/internal/model"

// censusQuestions returns the flattened snapshot of a condensed agricultural
// census questionnaire exercising every question type and the skip chains
// around respondent status (Q006), training (Q014) and banking (Q051/Q054).
func censusQuestions() []model.Question {
	q := func(volet, section int, code, text string, typ model.QuestionType, opts ...model.Option) model.Question {
		return model.Question{
			Code:         code,
			Text:         text,
			Type:         typ,
			Options:      opts,
			VoletOrdre:   volet,
			SectionOrdre: section,
		}
	}
	ouiNon := func(ouiGoto, nonGoto string) []model.Option {
		return []model.Option{
			{Value: "oui", Label: "Oui", GotoTarget: ouiGoto},
			{Value: "non", Label: "Non", GotoTarget: nonGoto},
		}
	}

	return []model.Question{
		q(1, 1, "Q004", "Date de l'entretien", model.QuestionTypeDate),
		q(1, 1, "Q005", "Nom de l'exploitant", model.QuestionTypeText),
		q(1, 2, "Q006", "Êtes-vous l'exploitant ?", model.QuestionTypeBoolean, ouiNon("Q014", "Q007")...),
		q(1, 2, "Q007", "Lien avec l'exploitant", model.QuestionTypeSingleChoice,
			model.Option{Value: "conjoint", Label: "Conjoint(e)"},
			model.Option{Value: "enfant", Label: "Enfant"},
		),
		q(1, 2, "Q008", "Nombre de personnes dans le ménage", model.QuestionTypeNumber),
		q(2, 1, "Q014", "Avez-vous reçu une formation agricole ?", model.QuestionTypeBoolean, ouiNon("", "Q016")...),
		q(2, 1, "Q015", "Type de formation reçue", model.QuestionTypeSingleChoice,
			model.Option{Value: "technique_culturale", Label: "Techniques culturales"},
			model.Option{Value: "gestion", Label: "Gestion d'exploitation"},
		),
		q(2, 1, "Q016", "Années d'expérience agricole", model.QuestionTypeNumber),
		q(2, 2, "Q020", "Cultures pratiquées", model.QuestionTypeMultiChoice,
			model.Option{Value: "cacao", Label: "Cacao"},
			model.Option{Value: "cafe", Label: "Café", GotoTarget: "Q022"},
			model.Option{Value: "anacarde", Label: "Anacarde"},
		),
		q(2, 2, "Q021", "Superficie totale cultivée", model.QuestionTypeNumber),
		q(2, 2, "Q022", "Pays d'origine des semences", model.QuestionTypeSingleChoice,
			model.Option{Value: "cote_divoire", Label: "Côte d'Ivoire"},
			model.Option{Value: "ghana", Label: "Ghana"},
		),
		q(3, 1, "Q051", "Avez-vous un compte bancaire ?", model.QuestionTypeBoolean, ouiNon("", "Q054")...),
		q(3, 1, "Q052", "Nom de la banque", model.QuestionTypeText),
		q(3, 1, "Q053", "Type de compte", model.QuestionTypeSingleChoice,
			model.Option{Value: "courant", Label: "Compte courant"},
			model.Option{Value: "epargne", Label: "Compte épargne"},
		),
		q(3, 2, "Q054", "Utilisez-vous le mobile money ?", model.QuestionTypeBoolean, ouiNon("", "Q058")...),
		q(3, 2, "Q055", "Opérateur principal", model.QuestionTypeSingleChoice,
			model.Option{Value: "orange_money", Label: "Orange Money"},
			model.Option{Value: "wave", Label: "Wave"},
		),
		q(3, 2, "Q058", "Avez-vous accès au crédit agricole ?", model.QuestionTypeBoolean, ouiNon("", "")...),
	}
}

func censusGraph(t interface{ Fatalf(string, ...interface{}) }) *Graph {
	g, err := BuildGraph("qnn-test", 1, censusQuestions())
	if err != nil {
		t.Fatalf("build census graph: %v", err)
	}
	return g
}
