package domain

// Vocabulary drives the keyword scorer: which query terms to ignore, which
// to weight up, and which related terms count as matches. The built-in lists
// target HR policy questions; deployments can override them with a YAML file.
type Vocabulary struct {
	StopWords     []string            `yaml:"stop_words"`
	OverrideTerms []string            `yaml:"override_terms"`
	Synonyms      map[string][]string `yaml:"synonyms"`
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		StopWords: []string{
			"to", "in", "for", "if", "do", "am", "is", "are", "have", "has",
			"had", "will", "would", "should", "could", "can", "may", "might",
			"the", "a", "an", "and", "or", "but", "so", "with", "from", "at",
			"by", "on", "up", "down", "out", "off", "over", "under", "again",
			"further", "then", "once",
		},
		OverrideTerms: []string{
			"resign", "notice", "give", "want", "need", "much", "work", "home",
			"remote", "allowed", "month", "written", "least", "employees",
			"resigning",
		},
		Synonyms: map[string][]string{
			"work":    {"work", "working", "job", "employment", "employee"},
			"home":    {"home", "remote", "telecommute", "telework"},
			"remote":  {"remote", "home", "telecommute", "telework", "distance"},
			"allowed": {"allowed", "permitted", "eligible", "can", "may"},
			"often":   {"often", "frequently", "frequency", "times", "days"},
			"resign":  {"resign", "resigning", "resignation", "quit", "leave", "exit", "departure"},
			"notice":  {"notice", "notification", "advance", "warning", "period"},
			"give":    {"give", "provide", "submit", "deliver", "send"},
			"want":    {"want", "wish", "desire", "need", "require"},
			"much":    {"much", "many", "long", "duration", "time", "period"},
			"need":    {"need", "require", "must", "should", "have"},
			"how":     {"what", "when", "where"},
			"i":       {"you", "employee", "staff"},
		},
	}
}
