package routesheet

// Specialist and test assignment rules follow the ministry order on
// mandatory periodic examinations: the set of doctors and tests is
// derived from the worker's position and harmful factors. Every sheet
// includes the therapist, who signs off the overall result.

const fallbackSpecialization = "Терапевт"

var positionSpecializations = map[string][]string{
	"Бухгалтер": {"Окулист", "Невропатолог"},
	"Сварщик":   {"Окулист", "ЛОР", "Невропатолог"},
	"Водитель":  {"Окулист", "Невропатолог", "Хирург"},
}

var factorSpecializations = map[string][]string{
	"шум":                {"ЛОР"},
	"вибрация":           {"Невропатолог"},
	"пыль":               {"ЛОР", "Рентгенолог"},
	"химические вещества": {"Терапевт", "Профпатолог"},
	"излучение":          {"Окулист", "Рентгенолог"},
	"высотные работы":    {"Невропатолог", "Окулист"},
}

// Every patient gets the base assays; positions and factors add more.
var baseTests = []string{
	"Общий анализ крови",
	"Общий анализ мочи",
}

var positionTests = map[string][]string{
	"Сварщик":  {"Биохимический анализ крови", "Анализ на тяжелые металлы", "Флюорография"},
	"Водитель": {"Тест на алкоголь и наркотики", "ЭКГ"},
}

var factorTests = map[string][]string{
	"пыль":     {"Анализ мокроты"},
	"шум":      {"Аудиометрия"},
	"вибрация": {"Спирометрия"},
}

// functionalTestNames marks which auto-created tests are functional
// diagnostics rather than laboratory assays.
var functionalTestNames = map[string]struct{}{
	"Флюорография": {},
	"ЭКГ":          {},
	"Аудиометрия":  {},
	"Спирометрия":  {},
}
