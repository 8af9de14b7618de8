package intent

// Category is the classified purpose of a conversation.
type Category string

const (
	CategoryAppointment Category = "appointment"
	CategoryPrice       Category = "price"
	CategoryInformation Category = "information"
	CategoryComplaint   Category = "complaint"
	CategoryContact     Category = "contact"
	CategoryQuote       Category = "quote"
	CategoryUrgent      Category = "urgent"
	CategoryGratitude   Category = "gratitude"
	CategoryOther       Category = "other"
)

// Categories lists every scored category in evaluation order. CategoryOther
// is the catch-all and is never scored directly.
var Categories = []Category{
	CategoryAppointment,
	CategoryPrice,
	CategoryInformation,
	CategoryComplaint,
	CategoryContact,
	CategoryQuote,
	CategoryUrgent,
	CategoryGratitude,
}

// keyword is one raw table entry. Primary marks the site's primary-language
// (French) subset, whose matches count double.
type keyword struct {
	text    string
	primary bool
}

func fr(text string) keyword { return keyword{text: text, primary: true} }
func kw(text string) keyword { return keyword{text: text} }

// keywordTable is the raw multilingual keyword table. Entries are written in
// natural spelling; compilation normalizes them, so accented and plain forms
// collapse together.
var keywordTable = map[Category][]keyword{
	CategoryAppointment: {
		fr("rendez-vous"), fr("rendez vous"), fr("rdv"),
		fr("réserver"), fr("réservation"), fr("créneau"),
		fr("disponibilité"), fr("passer vous voir"),
		kw("appointment"), kw("schedule"), kw("booking"),
	},
	CategoryPrice: {
		fr("prix"), fr("tarif"), fr("combien"), fr("coûte"),
		fr("budget"), fr("facture"),
		kw("price"), kw("pricing"), kw("how much"), kw("cost"),
	},
	CategoryInformation: {
		fr("renseignement"), fr("savoir plus"), fr("horaires"),
		fr("comment"), fr("quels services"), fr("informations"),
		kw("details"), kw("more about"), kw("opening hours"),
	},
	CategoryComplaint: {
		fr("problème"), fr("réclamation"), fr("plainte"),
		fr("mécontent"), fr("insatisfait"), fr("déçu"), fr("mauvais"),
		kw("complaint"), kw("unhappy"), kw("not satisfied"),
	},
	CategoryContact: {
		fr("contacter"), fr("appeler"), fr("téléphone"),
		fr("rappeler"), fr("joindre"), fr("courriel"),
		kw("contact"), kw("call me"), kw("reach you"),
	},
	CategoryQuote: {
		fr("devis"), fr("estimation"), fr("soumission"),
		fr("proposition commerciale"),
		kw("quote"), kw("quotation"), kw("estimate"),
	},
	CategoryUrgent: {
		fr("urgent"), fr("urgence"), fr("rapidement"),
		fr("immédiatement"), fr("aujourd'hui"), fr("au plus vite"),
		kw("asap"), kw("emergency"), kw("right away"),
	},
	CategoryGratitude: {
		fr("merci"), fr("remercie"), fr("parfait"), fr("génial"),
		kw("thank"), kw("thanks"), kw("perfect"),
	},
}

// bookingConfirmations is the assistant-side vocabulary used by the reporter
// to infer that an appointment conversation actually got booked.
var bookingConfirmations = []keyword{
	fr("confirmé"), fr("réservé"), fr("rendez-vous est"),
	fr("c'est noté"), fr("nous vous attendons"),
	kw("confirmed"), kw("booked"), kw("see you on"),
}
