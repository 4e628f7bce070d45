package assessor

import "github.com/raysh454/rgaalint/internal/dictionary"

// Config holds runtime settings for the assessor.
type Config struct {
	// BannedWords are added to every run's custom frame-title words.
	BannedWords []string `json:"banned_words"`

	// Dictionary lists the rules the report knows about. Nil means
	// dictionary.Default().
	Dictionary *dictionary.Dictionary `json:"-"`
}
