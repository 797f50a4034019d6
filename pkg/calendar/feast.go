package calendar

// feast is a fixed-date church feast. Easter and its dependents are
// moveable; the 1205 dates are recorded here directly.
type feast struct {
	month int
	day   int
	name  string
}

var feasts = []feast{
	{1, 1, "Circumcision of Christ / New Year"},
	{1, 6, "Epiphany"},
	{2, 2, "Candlemas / Purification of Mary"},
	{3, 25, "Annunciation / Lady Day"},
	{4, 17, "Easter Sunday"},
	{5, 26, "Ascension Day"},
	{6, 5, "Pentecost / Whitsunday"},
	{6, 24, "Nativity of St. John the Baptist / Midsummer"},
	{8, 15, "Assumption of Mary"},
	{9, 29, "Michaelmas / Feast of St. Michael"},
	{10, 28, "Feast of St. Simon and St. Jude"},
	{11, 1, "All Saints' Day"},
	{11, 11, "Feast of St. Martin"},
	{11, 30, "Feast of St. Andrew"},
	{12, 25, "Christmas / Nativity of Christ"},
	{12, 26, "St. Stephen's Day"},
	{12, 27, "Feast of St. John the Evangelist"},
	{12, 28, "Feast of the Holy Innocents"},
}

// FeastDay returns the feast celebrated on this date, if any.
func (d Date) FeastDay() (string, bool) {
	for _, f := range feasts {
		if d.Month == f.month && d.Day == f.day {
			return f.name, true
		}
	}
	return "", false
}

// Season returns "spring", "summer", "autumn" or "winter" using the
// astronomical season boundaries.
func (d Date) Season() string {
	m, day := d.Month, d.Day
	switch {
	case (m == 3 && day >= 21) || m == 4 || m == 5 || (m == 6 && day <= 20):
		return "spring"
	case (m == 6 && day >= 21) || m == 7 || m == 8 || (m == 9 && day <= 22):
		return "summer"
	case (m == 9 && day >= 23) || m == 10 || m == 11 || (m == 12 && day <= 20):
		return "autumn"
	default:
		return "winter"
	}
}

var weatherFlavors = map[string][]string{
	"spring": {
		"The spring air is crisp and fresh.",
		"New growth appears on the trees.",
		"Rain showers pass through the countryside.",
		"The days grow longer and warmer.",
	},
	"summer": {
		"The summer sun beats down warmly.",
		"Long days perfect for travel and campaigning.",
		"Heat shimmers over the fields.",
		"The countryside is green and lush.",
	},
	"autumn": {
		"Autumn leaves fall in golden drifts.",
		"The harvest is being gathered in.",
		"Cool winds blow from the north.",
		"The days grow shorter and colder.",
	},
	"winter": {
		"Winter cold grips the land.",
		"Frost covers the ground each morning.",
		"Travel is difficult in the mud and cold.",
		"The nights are long and dark.",
	},
}

// WeatherFlavor returns a short atmospheric line for the date. The choice
// is a pure function of the date so repeated renders stay consistent.
func (d Date) WeatherFlavor() string {
	flavors := weatherFlavors[d.Season()]
	return flavors[d.DayOfYear()%len(flavors)]
}
