package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agricensus/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("agricensus")
	coll := db.Collection("questionnaires")

	now := time.Now()
	questionnaireID := primitive.NewObjectID().Hex()

	published := model.Questionnaire{
		ID:              questionnaireID,
		QuestionnaireID: questionnaireID,
		Titre:           "Recensement des exploitations agricoles",
		Version:         1,
		Statut:          model.QuestionnairePublished,
		Volets:          volets(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := coll.InsertOne(ctx, &published); err != nil {
		log.Fatalf("Failed to insert published version: %v", err)
	}

	// Open a draft for subsequent edits, the shape Publish leaves behind
	draft := published
	draft.ID = primitive.NewObjectID().Hex()
	draft.Version = 2
	draft.Statut = model.QuestionnaireDraft
	if _, err := coll.InsertOne(ctx, &draft); err != nil {
		log.Fatalf("Failed to insert draft version: %v", err)
	}

	fmt.Printf("Seeded questionnaire %s (v1 published, v2 draft)\n", questionnaireID)
}

func ouiNon(ouiGoto, nonGoto string) []model.Option {
	return []model.Option{
		{Value: "oui", Label: "Oui", GotoTarget: ouiGoto},
		{Value: "non", Label: "Non", GotoTarget: nonGoto},
	}
}

func volets() []model.Volet {
	return []model.Volet{
		{
			Titre: "Identification de l'exploitation",
			Ordre: 1,
			Sections: []model.Section{
				{
					Titre: "Localisation",
					Ordre: 1,
					Questions: []model.Question{
						{Code: "Q001", Text: "Région", Type: model.QuestionTypeSingleChoice, Required: true, Options: []model.Option{
							{Value: "indenie_djuablin", Label: "Indénié-Djuablin"},
							{Value: "sud_comoe", Label: "Sud-Comoé"},
							{Value: "la_me", Label: "La Mé"},
						}},
						{Code: "Q002", Text: "Département", Type: model.QuestionTypeText, Required: true},
						{Code: "Q003", Text: "Village ou campement", Type: model.QuestionTypeText, Required: true},
						{Code: "Q004", Text: "Date de l'entretien", Type: model.QuestionTypeDate, Required: true},
						{Code: "Q005", Text: "Nom de l'exploitant", Type: model.QuestionTypeText, Required: true},
					},
				},
				{
					Titre: "Statut du répondant",
					Ordre: 2,
					Questions: []model.Question{
						// Oui jumps over the household roster to the producer volet
						{Code: "Q006", Text: "Êtes-vous l'exploitant ?", Type: model.QuestionTypeBoolean, Required: true, Options: ouiNon("Q014", "Q007")},
						{Code: "Q007", Text: "Lien avec l'exploitant", Type: model.QuestionTypeSingleChoice, Options: []model.Option{
							{Value: "conjoint", Label: "Conjoint(e)"},
							{Value: "enfant", Label: "Enfant"},
							{Value: "autre_parent", Label: "Autre parent"},
							{Value: "employe", Label: "Employé"},
						}},
						{Code: "Q008", Text: "Nombre de personnes dans le ménage", Type: model.QuestionTypeNumber, Unit: "personnes"},
					},
				},
			},
		},
		{
			Titre: "Caractéristiques du producteur",
			Ordre: 2,
			Sections: []model.Section{
				{
					Titre: "Formation",
					Ordre: 1,
					Questions: []model.Question{
						// Non skips the training detail question
						{Code: "Q014", Text: "Avez-vous reçu une formation agricole ?", Type: model.QuestionTypeBoolean, Required: true, Options: ouiNon("", "Q016")},
						{Code: "Q015", Text: "Type de formation reçue", Type: model.QuestionTypeSingleChoice, Options: []model.Option{
							{Value: "technique_culturale", Label: "Techniques culturales"},
							{Value: "gestion", Label: "Gestion d'exploitation"},
							{Value: "phytosanitaire", Label: "Traitement phytosanitaire"},
						}},
						{Code: "Q016", Text: "Années d'expérience agricole", Type: model.QuestionTypeNumber, Unit: "années"},
					},
				},
				{
					Titre: "Cultures",
					Ordre: 2,
					Questions: []model.Question{
						{Code: "Q020", Text: "Cultures pratiquées", Type: model.QuestionTypeMultiChoice, Options: []model.Option{
							{Value: "cacao", Label: "Cacao"},
							{Value: "cafe", Label: "Café"},
							{Value: "anacarde", Label: "Anacarde"},
							{Value: "hevea", Label: "Hévéa"},
							{Value: "vivrier", Label: "Cultures vivrières"},
						}},
						{Code: "Q021", Text: "Superficie totale cultivée", Type: model.QuestionTypeNumber, Unit: "ha"},
						{Code: "Q022", Text: "Pays d'origine des semences", Type: model.QuestionTypeSingleChoice, Options: []model.Option{
							{Value: "cote_divoire", Label: "Côte d'Ivoire"},
							{Value: "ghana", Label: "Ghana"},
							{Value: "autre", Label: "Autre"},
						}},
					},
				},
			},
		},
		{
			Titre: "Services financiers",
			Ordre: 3,
			Sections: []model.Section{
				{
					Titre: "Banque",
					Ordre: 1,
					Questions: []model.Question{
						// Non skips the banking detail questions
						{Code: "Q051", Text: "Avez-vous un compte bancaire ?", Type: model.QuestionTypeBoolean, Required: true, Options: ouiNon("", "Q054")},
						{Code: "Q052", Text: "Nom de la banque", Type: model.QuestionTypeText},
						{Code: "Q053", Text: "Type de compte", Type: model.QuestionTypeSingleChoice, Options: []model.Option{
							{Value: "courant", Label: "Compte courant"},
							{Value: "epargne", Label: "Compte épargne"},
						}},
					},
				},
				{
					Titre: "Mobile money et crédit",
					Ordre: 2,
					Questions: []model.Question{
						// Non skips straight to the credit access question
						{Code: "Q054", Text: "Utilisez-vous le mobile money ?", Type: model.QuestionTypeBoolean, Required: true, Options: ouiNon("", "Q058")},
						{Code: "Q055", Text: "Opérateur principal", Type: model.QuestionTypeSingleChoice, Options: []model.Option{
							{Value: "orange_money", Label: "Orange Money"},
							{Value: "mtn_momo", Label: "MTN MoMo"},
							{Value: "wave", Label: "Wave"},
						}},
						{Code: "Q056", Text: "Fréquence d'utilisation mensuelle", Type: model.QuestionTypeNumber, Unit: "transactions"},
						{Code: "Q057", Text: "Usage principal", Type: model.QuestionTypeText},
						{Code: "Q058", Text: "Avez-vous accès au crédit agricole ?", Type: model.QuestionTypeBoolean, Required: true, Options: ouiNon("", "")},
						{Code: "Q059", Text: "Montant du dernier crédit obtenu", Type: model.QuestionTypeNumber, Unit: "FCFA"},
					},
				},
			},
		},
	}
}
