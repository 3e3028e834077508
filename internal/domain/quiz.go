package domain

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Quiz is the question set shown for a module. Answers are not graded.
type Quiz struct {
	ModuleID    int            `json:"module_id"`
	ModuleTitle string         `json:"module_title"`
	Questions   []QuizQuestion `json:"questions"`
}

// LiquidityQuestion is the static question displayed for every module.
var LiquidityQuestion = QuizQuestion{
	Prompt:  "What is the minimum recommended liquidity ratio?",
	Options: []string{"10%", "50%", "75%", "100%"},
}
