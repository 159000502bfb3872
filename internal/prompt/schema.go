package prompt

// Type is a JSON schema primitive.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
)

// Schema is a provider-neutral description of the structured output.
// Generators translate it into their SDK's schema type. Objects never
// allow undeclared properties.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// Order lists property names in the order they should be presented.
	Order    []string
	Items    *Schema
	Required []string
}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

// PuzzleSchema describes one puzzle object.
var PuzzleSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"puzzle_number":          {Type: TypeInteger, Description: "The current puzzle in the sequence (e.g., 1, 2, 3...)."},
		"title":                  str("A short, intriguing title for the puzzle."),
		"puzzle_text":            str("The actual riddle, cypher, logic grid instructions, or coordinate puzzle."),
		"solution":               str("The single correct answer the user must input. Case-insensitive, stripped of extra spaces for checking."),
		"narrative_continuation": str("The story text the user sees upon successfully solving the puzzle. This leads into the next puzzle (or the game's ending)."),
		"hint_1":                 str("The first, most vague hint for the puzzle."),
		"hint_2":                 str("The second, more helpful hint for the puzzle."),
		"hint_3":                 str("The third, most direct hint for the puzzle."),
	},
	Order:    []string{"puzzle_number", "title", "puzzle_text", "solution", "narrative_continuation", "hint_1", "hint_2", "hint_3"},
	Required: []string{"puzzle_number", "title", "puzzle_text", "solution", "narrative_continuation", "hint_1", "hint_2", "hint_3"},
}

// StorySchema describes the whole generated story.
var StorySchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"story_title":  str("A title for the entire multi-stage ARG story."),
		"introduction": str("The opening narrative text that sets up the game and the first puzzle."),
		"puzzles": {
			Type:        TypeArray,
			Description: "A list of puzzle objects, matching the number requested in the prompt.",
			Items:       PuzzleSchema,
		},
		"ending_text": str("The final narrative text shown after the last puzzle is solved."),
	},
	Order:    []string{"story_title", "introduction", "puzzles", "ending_text"},
	Required: []string{"story_title", "introduction", "puzzles", "ending_text"},
}
