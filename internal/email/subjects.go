package email

const (
	subjectConfirmation   = "Confirmation de votre rendez-vous"
	subjectPlanned        = "Votre rendez-vous est planifié"
	subjectReminder       = "Rappel : votre rendez-vous approche"
	subjectMissed         = "Rendez-vous manqué"
	subjectJuristAssigned = "Votre juriste a été désigné"
	subjectFormulaire     = "Formulaire à compléter"
	subjectDossierStatus  = "Mise à jour de votre dossier"
	subjectAccountCreated = "Votre espace client est maintenant disponible"
	subjectContract       = "Votre contrat est disponible"
	subjectReceipts       = "Vos reçus de paiement"
)
