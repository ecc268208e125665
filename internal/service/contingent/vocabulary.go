package contingent

// harmfulFactorVocabulary is the ministry-approved list of workplace
// harmful factors offered in the portal's pickers. The list is static
// per deployment; the service caches it alongside derived lookups.
var harmfulFactorVocabulary = []string{
	"Шум",
	"Вибрация",
	"Инфразвук",
	"Ультразвук",
	"Электромагнитные поля",
	"Ионизирующее излучение",
	"Неионизирующее излучение",
	"Повышенная температура воздуха",
	"Пониженная температура воздуха",
	"Повышенная влажность",
	"Пыль",
	"Сварочный аэрозоль",
	"Химические вещества",
	"Свинец и его соединения",
	"Ртуть и её соединения",
	"Кислоты и щёлочи",
	"Органические растворители",
	"Нефтепродукты",
	"Биологические факторы",
	"Микроорганизмы-продуценты",
	"Физические перегрузки",
	"Подъём и перемещение тяжестей",
	"Работа стоя",
	"Зрительно напряжённые работы",
	"Высотные работы",
	"Работа под землёй",
	"Работа с движущимися механизмами",
	"Ночные смены",
	"Монотонный труд",
	"Нервно-эмоциональные нагрузки",
}
