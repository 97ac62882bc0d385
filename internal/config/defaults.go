package config

import "path/filepath"

func Defaults() *Config {
	dir := DefaultConfigDir()
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			SelfName: "Me",
		},
		Store: StoreConfig{
			DBPath: "~/Library/Messages/chat.db",
		},
		Filter: FilterConfig{
			Keyword:          "joty",
			CutoffDate:       "2025-01-01",
			MaxLength:        20,
			ReactionPrefixes: defaultReactionPrefixes(),
			MetaPatterns:     defaultMetaPatterns(),
		},
		Window: WindowConfig{
			ThreadLookback: 5,
			FlatLookback:   15,
		},
		Report: ReportConfig{
			JSONPath:     filepath.Join(dir, "joty_candidates.json"),
			MarkdownPath: filepath.Join(dir, "joty_review.md"),
			NameMapPath:  filepath.Join(dir, "names.yaml"),
		},
	}
}

// defaultReactionPrefixes lists the store-generated tapback annotations that
// must never count as authored text.
func defaultReactionPrefixes() []string {
	return []string{
		"Loved ",
		"Liked ",
		"Emphasized ",
		"Laughed at ",
		"Disliked ",
	}
}

// defaultMetaPatterns rejects discussion about the award itself rather than
// an actual nomination. Matched against lower-cased, trimmed text.
func defaultMetaPatterns() []string {
	return []string{
		`joty.*voting`,
		`joty.*results`,
		`joty.*tabulated`,
		`joty.*contender`,
		`joty.*nom`,
		`joty.*candidate`,
		`personal joty`,
		`doing joty`,
		`give the joty`,
		`joty.*winner`,
		`joty.*refractory`,
		`joty.*hilarity`,
		`strava joty`,
		`joty.*hit`,
	}
}
