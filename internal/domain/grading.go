package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NoAnswer is displayed in place of an empty or missing submission.
const NoAnswer = "(No answer)"

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// SectionResult holds the score of one section and its per-question detail in display order.
type SectionResult struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Details []QuestionResult `json:"details"`
}

// Percentage is the rounded share of correct answers, 0 for an empty section.
func (s SectionResult) Percentage() int {
	return Percentage(s.Score, s.Total)
}

// GradingResult is the full report produced by GradeExam.
type GradingResult struct {
	Reading        SectionResult `json:"reading"`
	Listening      SectionResult `json:"listening"`
	Writing        SectionResult `json:"writing"`
	TotalScore     int           `json:"totalScore"`
	TotalQuestions int           `json:"totalQuestions"`
	Percentage     int           `json:"percentage"`
}

// Section returns the result of a single section.
func (r *GradingResult) Section(section Section) SectionResult {
	switch section {
	case SectionReading:
		return r.Reading
	case SectionListening:
		return r.Listening
	default:
		return r.Writing
	}
}

// GradeExam scores answers against key. It never mutates either argument and
// returns an error only when the key itself is malformed.
func GradeExam(answers ExamAnswers, key AnswerKey) (*GradingResult, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	result := &GradingResult{
		Reading:   gradeByValue(key.Reading, answers.Reading),
		Listening: gradeByValue(key.Listening, answers.Listening),
	}
	switch key.Writing.Mode {
	case WritingModeWordCount:
		result.Writing = gradeByWordCount(key.Writing.Answers, key.Writing.MinWordCount, answers.Writing)
	case WritingModeValueMatch:
		result.Writing = gradeByValue(key.Writing.Answers, answers.Writing)
	}

	for _, s := range []SectionResult{result.Reading, result.Listening, result.Writing} {
		result.TotalScore += s.Score
		result.TotalQuestions += s.Total
	}
	result.Percentage = Percentage(result.TotalScore, result.TotalQuestions)
	return result, nil
}

func gradeByValue(key, submitted map[string]string) SectionResult {
	ids := orderedQuestionIDs(key)
	section := SectionResult{Total: len(ids), Details: make([]QuestionResult, 0, len(ids))}
	for _, id := range ids {
		userAnswer := submitted[id]
		correct := key[id]
		isCorrect := Normalize(userAnswer) == Normalize(correct)
		if isCorrect {
			section.Score++
		}
		section.Details = append(section.Details, QuestionResult{
			Question:      questionLabel(id),
			UserAnswer:    displayAnswer(userAnswer),
			CorrectAnswer: correct,
			IsCorrect:     isCorrect,
		})
	}
	return section
}

func gradeByWordCount(key map[string]string, minWordCount int, submitted map[string]string) SectionResult {
	ids := orderedQuestionIDs(key)
	section := SectionResult{Total: len(ids), Details: make([]QuestionResult, 0, len(ids))}
	threshold := fmt.Sprintf("≥%d words", minWordCount)
	for _, id := range ids {
		text := submitted[id]
		words := CountWords(text)
		isCorrect := words >= minWordCount
		if isCorrect {
			section.Score++
		}
		display := NoAnswer
		if text != "" {
			display = fmt.Sprintf("%d words", words)
		}
		section.Details = append(section.Details, QuestionResult{
			Question:      questionLabel(id),
			UserAnswer:    display,
			CorrectAnswer: threshold,
			IsCorrect:     isCorrect,
		})
	}
	return section
}

func displayAnswer(answer string) string {
	if answer == "" {
		return NoAnswer
	}
	return answer
}

// Normalize lowercases s, trims it and collapses internal whitespace runs to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Percentage returns round-half-up(score*100/total) in integer arithmetic, or 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}

// questionNumber returns the digits embedded in id without leading zeros, "0" if there are none.
func questionNumber(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			if b.Len() == 0 && r == '0' {
				continue
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

func questionLabel(id string) string {
	return "Q" + questionNumber(id)
}

// orderedQuestionIDs sorts ids by their embedded number; equal numbers fall back to the raw id.
// Numbers are compared as digit strings so arbitrarily long ids cannot overflow.
func orderedQuestionIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := questionNumber(ids[i]), questionNumber(ids[j])
		if len(ni) != len(nj) {
			return len(ni) < len(nj)
		}
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}
