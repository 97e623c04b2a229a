package domain

// DefaultSetSize is how many catalog templates a user picks at registration.
const DefaultSetSize = 10

var coreTasks = []TaskTemplate{
	{"Rise and shine - enjoy a refreshing glass of water!", 1},
	{"Splash your face and greet the day with a smile.", 1},
	{"Brush your teeth until they sparkle.", 1},
	{"Hop in the shower if you're feeling a bit groggy.", 1},
	{"Quickly brush your hair for a neat look.", 1},
	{"Change into fresh undies and a comfy tee.", 1},
	{"Fuel up with a healthy meal or snack.", 1},
	{"Take a light walk or stretch to get moving.", 1},
	{"Do something fun that makes your heart sing.", 1},
	{"Check in with your mood and give yourself a high-five.", 1},
}

var bonusTasks = []TaskTemplate{
	{"Meditate for 5 magical minutes.", 2},
	{"Write one thing you're grateful for.", 2},
	{"Drink another glass of water - hydrate like a hero!", 1},
	{"Take 5 deep, mindful breaths.", 1},
	{"Step outside and soak up some sunshine.", 1},
	{"Play your favorite tune and dance a bit.", 2},
	{"Read a few pages of a good book.", 2},
	{"Do a quick, gentle stretch.", 1},
	{"Tidy up a small corner for a clear mind.", 2},
	{"Smile at yourself in the mirror.", 1},
	{"Whip up a tasty healthy snack.", 2},
	{"Take a short break from screens.", 1},
	{"Enjoy a warm cup of tea or coffee.", 1},
	{"Send a quick thank-you to someone.", 1},
	{"Jot down one positive thought.", 1},
	{"Do a 2-minute breathing exercise.", 1},
	{"Celebrate one small win today.", 2},
	{"Try a brief mindfulness exercise.", 2},
	{"Doodle something fun.", 2},
	{"Reach out with a kind word to a friend.", 1},
}

// Catalog returns all 30 templates: core first, then bonus. Numbering shown
// to users is 1-based over this slice.
func Catalog() []TaskTemplate {
	res := make([]TaskTemplate, 0, len(coreTasks)+len(bonusTasks))
	res = append(res, coreTasks...)
	return append(res, bonusTasks...)
}

// CoreTasks returns a copy of the core set used for the "Default" selection.
func CoreTasks() []TaskTemplate {
	return append([]TaskTemplate(nil), coreTasks...)
}

// TimezonePreset is a labelled IANA zone offered during registration.
type TimezonePreset struct {
	Label string
	Zone  string
}

// TimezonePresets lists the zones offered in keyboards.
func TimezonePresets() []TimezonePreset {
	return []TimezonePreset{
		{"Eastern Time (US)", "America/New_York"},
		{"Central Time (US)", "America/Chicago"},
		{"Mountain Time (US)", "America/Denver"},
		{"Pacific Time (US)", "America/Los_Angeles"},
		{"Greenwich Mean Time", "Etc/Greenwich"},
		{"London", "Europe/London"},
		{"Paris", "Europe/Paris"},
		{"Tokyo", "Asia/Tokyo"},
	}
}
