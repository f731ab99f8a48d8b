package email

const (
	subjectQuoteReadyFmt     = "Votre devis %s de %s"
	subjectLeadQuoteReadyFmt = "Votre demande : devis %s de %s"
	subjectQuoteUpdatedFmt   = "Mise à jour de votre devis %s"
)
