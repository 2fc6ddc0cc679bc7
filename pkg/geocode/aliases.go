package geocode

// aliases maps lowercased short forms (abbreviations, city nicknames,
// country codes) to canonical geocodable expansions. Invariant: no value,
// lowercased, may resolve to a different entry — Normalize output must be
// stable under re-application. Covered by a test.
var aliases = map[string]string{
	// United States
	"sf":       "San Francisco, CA, USA",
	"bay area": "San Francisco Bay Area, CA, USA",
	"ny":       "New York, NY, USA",
	"nyc":      "New York, NY, USA",
	"la":       "Los Angeles, CA, USA",

	// United Kingdom
	"uk":       "United Kingdom",
	"u.k.":     "United Kingdom",
	"england":  "England, United Kingdom",
	"scotland": "Scotland, United Kingdom",
	"wales":    "Wales, United Kingdom",

	// France
	"paris":     "Paris, France",
	"idf":       "Île-de-France, France",
	"paca":      "Provence-Alpes-Côte d'Azur, France",
	"75":        "Paris, France",
	"lyon":      "Lyon, France",
	"marseille": "Marseille, France",
	"toulouse":  "Toulouse, France",
	"nantes":    "Nantes, France",
	"bordeaux":  "Bordeaux, France",

	// Germany
	"de":      "Germany",
	"germany": "Germany",
	"berlin":  "Berlin, Germany",
	"munich":  "Munich, Germany",
	"hamburg": "Hamburg, Germany",

	// Spain
	"es":        "Spain",
	"spain":     "Spain",
	"madrid":    "Madrid, Spain",
	"barcelona": "Barcelona, Spain",
	"valencia":  "Valencia, Spain",

	// Italy
	"it":     "Italy",
	"italy":  "Italy",
	"rome":   "Rome, Italy",
	"milano": "Milan, Italy",
	"milan":  "Milan, Italy",
	"napoli": "Naples, Italy",

	// Netherlands
	"nl":          "Netherlands",
	"netherlands": "Netherlands",
	"holland":     "Netherlands",
	"amsterdam":   "Amsterdam, Netherlands",
	"rotterdam":   "Rotterdam, Netherlands",

	// Belgium
	"be":       "Belgium",
	"belgium":  "Belgium",
	"brussels": "Brussels, Belgium",
	"bxl":      "Brussels, Belgium",

	// Portugal
	"pt":       "Portugal",
	"portugal": "Portugal",
	"lisbon":   "Lisbon, Portugal",
	"porto":    "Porto, Portugal",

	// Ireland
	"ie":      "Ireland",
	"ireland": "Ireland",
	"dublin":  "Dublin, Ireland",

	// Austria
	"at":      "Austria",
	"austria": "Austria",
	"vienna":  "Vienna, Austria",

	// Poland
	"pl":     "Poland",
	"poland": "Poland",
	"warsaw": "Warsaw, Poland",
	"krakow": "Krakow, Poland",

	// Czech Republic
	"cz":     "Czech Republic",
	"czech":  "Czech Republic",
	"prague": "Prague, Czech Republic",

	// Hungary
	"hu":       "Hungary",
	"hungary":  "Hungary",
	"budapest": "Budapest, Hungary",

	// Romania
	"ro":        "Romania",
	"romania":   "Romania",
	"bucharest": "Bucharest, Romania",

	// Bulgaria
	"bg":       "Bulgaria",
	"bulgaria": "Bulgaria",
	"sofia":    "Sofia, Bulgaria",

	// Greece
	"gr":     "Greece",
	"greece": "Greece",
	"athens": "Athens, Greece",

	// Sweden
	"se":        "Sweden",
	"sweden":    "Sweden",
	"stockholm": "Stockholm, Sweden",

	// Denmark
	"dk":         "Denmark",
	"denmark":    "Denmark",
	"copenhagen": "Copenhagen, Denmark",

	// Finland
	"fi":       "Finland",
	"finland":  "Finland",
	"helsinki": "Helsinki, Finland",

	// Croatia
	"hr":      "Croatia",
	"croatia": "Croatia",
	"zagreb":  "Zagreb, Croatia",

	// Slovenia
	"si":        "Slovenia",
	"slovenia":  "Slovenia",
	"ljubljana": "Ljubljana, Slovenia",

	// Slovakia
	"sk":         "Slovakia",
	"slovakia":   "Slovakia",
	"bratislava": "Bratislava, Slovakia",

	// Baltics
	"lt":      "Lithuania",
	"vilnius": "Vilnius, Lithuania",
	"lv":      "Latvia",
	"riga":    "Riga, Latvia",
	"ee":      "Estonia",
	"tallinn": "Tallinn, Estonia",

	// Cyprus and Malta
	"cy":     "Cyprus",
	"cyprus": "Cyprus",
	"mt":     "Malta",
	"malta":  "Malta",
}
