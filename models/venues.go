package models

import "strings"

// Seats of the first-instance tax courts (one per province)
var provinces = []string{
	"Agrigento", "Alessandria", "Ancona", "Aosta", "Arezzo", "Ascoli Piceno", "Asti",
	"Avellino", "Bari", "Barletta-Andria-Trani", "Belluno", "Benevento", "Bergamo", "Biella",
	"Bologna", "Bolzano", "Brescia", "Brindisi", "Cagliari", "Caltanissetta", "Campobasso",
	"Caserta", "Catania", "Catanzaro", "Chieti", "Como", "Cosenza", "Cremona", "Crotone",
	"Cuneo", "Enna", "Fermo", "Ferrara", "Firenze", "Foggia", "Forlì-Cesena", "Frosinone",
	"Genova", "Gorizia", "Grosseto", "Imperia", "Isernia", "L'Aquila", "La Spezia", "Latina",
	"Lecce", "Lecco", "Livorno", "Lodi", "Lucca", "Macerata", "Mantova", "Massa-Carrara",
	"Matera", "Messina", "Milano", "Modena", "Monza e Brianza", "Napoli", "Novara", "Nuoro",
	"Oristano", "Padova", "Palermo", "Parma", "Pavia", "Perugia", "Pesaro e Urbino", "Pescara",
	"Piacenza", "Pisa", "Pistoia", "Pordenone", "Potenza", "Prato", "Ragusa", "Ravenna",
	"Reggio Calabria", "Reggio Emilia", "Rieti", "Rimini", "Roma", "Rovigo", "Salerno",
	"Sassari", "Savona", "Siena", "Siracusa", "Sondrio", "Sud Sardegna", "Taranto", "Teramo",
	"Terni", "Torino", "Trapani", "Trento", "Treviso", "Trieste", "Udine", "Varese", "Venezia",
	"Verbano-Cusio-Ossola", "Vercelli", "Verona", "Vibo Valentia", "Vicenza", "Viterbo",
}

var regions = []string{
	"Abruzzo", "Basilicata", "Calabria", "Campania", "Emilia-Romagna", "Friuli-Venezia Giulia",
	"Lazio", "Liguria", "Lombardia", "Marche", "Molise", "Piemonte", "Puglia", "Sardegna",
	"Sicilia", "Toscana", "Trentino-Alto Adige", "Umbria", "Valle d'Aosta", "Veneto",
}

// ValidVenues returns the venues selectable for a court level: provinces for the
// first instance, regions for the second instance and whole-region searches, none otherwise.
func ValidVenues(level CourtLevel) []string {
	var src []string
	switch level {
	case CourtLevelFirstInstance:
		src = provinces
	case CourtLevelSecondInstance, CourtLevelWholeRegion:
		src = regions
	default:
		return []string{}
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// IsValidVenue reports whether venue belongs to the domain of level, matching
// case-insensitively, and returns its canonical spelling.
func IsValidVenue(level CourtLevel, venue string) (string, bool) {
	venue = strings.TrimSpace(venue)
	if venue == "" {
		return "", false
	}
	var src []string
	switch level {
	case CourtLevelFirstInstance:
		src = provinces
	case CourtLevelSecondInstance, CourtLevelWholeRegion:
		src = regions
	default:
		return "", false
	}
	for _, v := range src {
		if strings.EqualFold(v, venue) {
			return v, true
		}
	}
	return "", false
}
