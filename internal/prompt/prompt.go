// internal/prompt/prompt.go
//
// Builds the generation request for a new ARG story.
// Responsibilities:
//   - Map difficulty → puzzle count and genre → narrative tone.
//   - Compose the user prompt.
//   - Carry the fixed system instruction and story schema.
//
// Everything here is pure data transformation.
package prompt

import "fmt"

// Default values used for unrecognized difficulty and genre labels.
const (
	DefaultPuzzleCount = 5
	DefaultTone        = "Neutral and clear."
)

// puzzleCounts maps a difficulty label to the number of puzzles requested.
var puzzleCounts = map[string]int{
	"Easy":   7,
	"Medium": 5,
	"Hard":   3,
}

// tones maps a genre label to a style directive for the narrative.
var tones = map[string]string{
	"Sci-fi":       "Clinical, technical, focused on cosmic scale, system failures, or computer logs.",
	"Medieval":     "Mythic, slightly formal, referring to royalty, oaths, divine law, and ancient structures.",
	"Mythological": "Epic, archaic language, focused on fate, gods, heroes, and destiny.",
	"Horror":       "Suspenseful, sensory, using first-person dread, panic, and environmental details (smell, cold).",
	"Modern":       "Casual, journalistic, focused on news reports, conspiracy theories, or digital communications (text messages).",
}

// Difficulties lists the named difficulty levels, easiest first.
func Difficulties() []string { return []string{"Easy", "Medium", "Hard"} }

// Genres lists the genres with a dedicated tone.
func Genres() []string { return []string{"Sci-fi", "Medieval", "Mythological", "Horror", "Modern"} }

// SystemInstruction accompanies every generation call.
const SystemInstruction = "You are a master ARG (Alternate Reality Game) creator. Your task is to generate a complete, multi-stage, " +
	"short-story ARG based on a user's chosen difficulty, genre, and a specific number of puzzles. " +
	"The difficulty level must affect the complexity of the puzzles. " +
	"\n\n**CRITICAL RULE:** You must double-check all ciphers, riddles, and logical puzzles. The 'puzzle_text' " +
	"must logically and provably decrypt or solve to the exact 'solution', and that solution must be the only valid one. " +
	"\n\n**Strictly** adhere to the JSON schema provided for the output."

// Request is everything a generator needs for one story.
type Request struct {
	Difficulty        string
	Genre             string
	PuzzleCount       int
	Tone              string
	SystemInstruction string
	UserPrompt        string
	Schema            *Schema
}

// PuzzleCount returns the puzzle count for a difficulty label.
func PuzzleCount(difficulty string) int {
	if n, ok := puzzleCounts[difficulty]; ok {
		return n
	}
	return DefaultPuzzleCount
}

// KnownDifficulty reports whether difficulty is one of the named levels.
func KnownDifficulty(difficulty string) bool {
	_, ok := puzzleCounts[difficulty]
	return ok
}

// Tone returns the narrative tone directive for a genre label.
func Tone(genre string) string {
	if t, ok := tones[genre]; ok {
		return t
	}
	return DefaultTone
}

// Build composes the generation request for difficulty and genre.
func Build(difficulty, genre string) Request {
	n := PuzzleCount(difficulty)
	tone := Tone(genre)
	return Request{
		Difficulty:        difficulty,
		Genre:             genre,
		PuzzleCount:       n,
		Tone:              tone,
		SystemInstruction: SystemInstruction,
		UserPrompt: fmt.Sprintf(
			"Generate a complete **%d-puzzle** ARG story. "+
				"Difficulty: **%s**. Genre: **%s**. "+
				"Narrative Tone: **%s**. "+
				"Ensure the puzzles blend into the narrative and the difficulty level is accurately represented.",
			n, difficulty, genre, tone),
		Schema: StorySchema,
	}
}
