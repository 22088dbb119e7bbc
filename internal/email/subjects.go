package email

// Campaign step subjects, keyed by the step name carried in the outbox
// payload.
var campaignStepSubjects = map[string]string{
	"lancement": "Lancement du recensement des objets protégés de votre commune",
	"relance1":  "Avez-vous commencé le recensement des objets de votre commune ?",
	"relance2":  "Le recensement des objets de votre commune vous attend",
	"relance3":  "Derniers jours pour recenser les objets de votre commune",
	"fin":       "Fin de la campagne de recensement de votre commune",
}

var campaignStepIntros = map[string]string{
	"lancement": "La campagne de recensement des objets monuments historiques de votre département est lancée.",
	"relance1":  "La campagne de recensement est en cours et votre commune n'a pas encore commencé.",
	"relance2":  "La campagne de recensement se poursuit, il est encore temps de participer.",
	"relance3":  "La campagne de recensement se termine bientôt.",
	"fin":       "La campagne de recensement de votre département est terminée.",
}

const (
	subjectDossierIncomplete = "Votre dossier de recensement n'a pas été transmis"
	subjectDossierSubmitted  = "Un dossier de recensement a été transmis"
	subjectDossierAccepted   = "Votre dossier de recensement a été accepté"
	subjectObjetsVerts       = "Merci pour votre recensement"
)
