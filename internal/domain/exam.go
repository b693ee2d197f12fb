package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Section is one independently scored part of the exam.
type Section string

const (
	SectionReading   Section = "reading"
	SectionListening Section = "listening"
	SectionWriting   Section = "writing"
)

// Sections lists the exam sections in display order.
func Sections() []Section {
	return []Section{SectionReading, SectionListening, SectionWriting}
}

// WritingMode selects how the writing section is graded.
type WritingMode string

const (
	// WritingModeWordCount scores a writing answer correct when it reaches MinWordCount tokens.
	WritingModeWordCount WritingMode = "word_count"
	// WritingModeValueMatch compares writing answers against the key like reading and listening.
	WritingModeValueMatch WritingMode = "value_match"
)

// minWordCountField is the auxiliary writing field that carries the word-count threshold.
// It is never a question id.
const minWordCountField = "minWordCount"

// WritingKey is the writing part of an answer key. In word-count mode the Answers
// values are model answers shown for reference only; the ids still define the questions.
type WritingKey struct {
	Mode         WritingMode
	MinWordCount int
	Answers      map[string]string
}

// AnswerKey is the authoritative mapping from question id to correct answer, per section.
type AnswerKey struct {
	Reading   map[string]string
	Listening map[string]string
	Writing   WritingKey
	PDFURL    string
}

// Validate checks the preconditions the grading engine relies on.
func (k AnswerKey) Validate() error {
	if k.Reading == nil {
		return NewMalformedKeyError("reading section is missing")
	}
	if k.Listening == nil {
		return NewMalformedKeyError("listening section is missing")
	}
	if k.Writing.Answers == nil {
		return NewMalformedKeyError("writing section is missing")
	}
	switch k.Writing.Mode {
	case WritingModeWordCount:
		if k.Writing.MinWordCount < 0 {
			return NewMalformedKeyError("writing minWordCount must not be negative, got %d", k.Writing.MinWordCount)
		}
	case WritingModeValueMatch:
	default:
		return NewMalformedKeyError("unknown writing mode %q", k.Writing.Mode)
	}

	for _, s := range []struct {
		name    Section
		answers map[string]string
	}{
		{SectionReading, k.Reading},
		{SectionListening, k.Listening},
		{SectionWriting, k.Writing.Answers},
	} {
		for id := range s.answers {
			if id == "" {
				return NewMalformedKeyError("%s section contains an empty question id", s.name)
			}
		}
	}
	if _, ok := k.Writing.Answers[minWordCountField]; ok {
		return NewMalformedKeyError("%q is reserved and cannot be a writing question id", minWordCountField)
	}
	return nil
}

// Clone returns a deep copy of the key.
func (k AnswerKey) Clone() AnswerKey {
	return AnswerKey{
		Reading:   cloneStringMap(k.Reading),
		Listening: cloneStringMap(k.Listening),
		Writing: WritingKey{
			Mode:         k.Writing.Mode,
			MinWordCount: k.Writing.MinWordCount,
			Answers:      cloneStringMap(k.Writing.Answers),
		},
		PDFURL: k.PDFURL,
	}
}

// QuestionCount returns the number of graded questions the key defines.
func (k AnswerKey) QuestionCount() int {
	return len(k.Reading) + len(k.Listening) + len(k.Writing.Answers)
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type answerKeyJSON struct {
	Reading   map[string]string      `json:"reading"`
	Listening map[string]string      `json:"listening"`
	Writing   map[string]interface{} `json:"writing"`
	PDFURL    string                 `json:"pdfUrl,omitempty"`
}

// MarshalJSON writes the key in its document shape. A word-count writing section
// carries the minWordCount field next to its question ids.
func (k AnswerKey) MarshalJSON() ([]byte, error) {
	writing := make(map[string]interface{}, len(k.Writing.Answers)+1)
	for id, answer := range k.Writing.Answers {
		writing[id] = answer
	}
	if k.Writing.Mode == WritingModeWordCount {
		writing[minWordCountField] = k.Writing.MinWordCount
	}
	return json.Marshal(answerKeyJSON{
		Reading:   nonNilMap(k.Reading),
		Listening: nonNilMap(k.Listening),
		Writing:   writing,
		PDFURL:    k.PDFURL,
	})
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// UnmarshalJSON decodes the document shape. The presence of minWordCount in the
// writing object selects word-count mode; otherwise writing is graded by value.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var raw struct {
		Reading   json.RawMessage `json:"reading"`
		Listening json.RawMessage `json:"listening"`
		Writing   json.RawMessage `json:"writing"`
		PDFURL    string          `json:"pdfUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewError(CodeMalformedAnswerKey, "answer key is not a valid JSON object", fmt.Errorf("%w: %w", ErrMalformedKey, err))
	}

	reading, err := decodeSection(SectionReading, raw.Reading)
	if err != nil {
		return err
	}
	listening, err := decodeSection(SectionListening, raw.Listening)
	if err != nil {
		return err
	}
	writing, err := decodeWriting(raw.Writing)
	if err != nil {
		return err
	}

	*k = AnswerKey{
		Reading:   reading,
		Listening: listening,
		Writing:   writing,
		PDFURL:    raw.PDFURL,
	}
	return nil
}

func sectionFields(section Section, raw json.RawMessage) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewMalformedKeyError("%s section is missing", section)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, NewMalformedKeyError("%s section must be an object", section)
	}
	return fields, nil
}

func decodeSection(section Section, raw json.RawMessage) (map[string]string, error) {
	fields, err := sectionFields(section, raw)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(fields))
	for _, id := range sortedKeys(fields) {
		if id == "" {
			return nil, NewMalformedKeyError("%s section contains an empty question id", section)
		}
		var answer string
		if err := json.Unmarshal(fields[id], &answer); err != nil {
			return nil, NewMalformedKeyError("%s.%s must be a string", section, id)
		}
		answers[id] = answer
	}
	return answers, nil
}

func decodeWriting(raw json.RawMessage) (WritingKey, error) {
	fields, err := sectionFields(SectionWriting, raw)
	if err != nil {
		return WritingKey{}, err
	}

	wk := WritingKey{Mode: WritingModeValueMatch}
	if threshold, ok := fields[minWordCountField]; ok {
		n, ok := parseThreshold(threshold)
		if !ok {
			return WritingKey{}, NewMalformedKeyError("writing.%s must be a non-negative integer", minWordCountField)
		}
		wk.Mode = WritingModeWordCount
		wk.MinWordCount = n
		delete(fields, minWordCountField)
	}

	answers, err := decodeSection(SectionWriting, mustMarshal(fields))
	if err != nil {
		return WritingKey{}, err
	}
	wk.Answers = answers
	return wk, nil
}

// parseThreshold accepts a whole number written as 20, 20.0 or "20".
func parseThreshold(raw json.RawMessage) (int, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, false
		}
		text = num.String()
	}
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func mustMarshal(fields map[string]json.RawMessage) json.RawMessage {
	b, err := json.Marshal(fields)
	if err != nil {
		// Re-encoding already decoded raw messages cannot fail.
		panic(err)
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseAnswerKey decodes and validates an answer key document.
func ParseAnswerKey(data []byte) (*AnswerKey, error) {
	var key AnswerKey
	if err := json.Unmarshal(data, &key); err != nil {
		if IsErrorCode(err, CodeMalformedAnswerKey) {
			return nil, err
		}
		return nil, NewError(CodeMalformedAnswerKey, "answer key could not be decoded", fmt.Errorf("%w: %w", ErrMalformedKey, err))
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &key, nil
}

// DefaultAnswerKey returns the built-in 15/15/5 key used until an administrator stores one.
// Writing is graded by word count; the writing values are model answers.
func DefaultAnswerKey() AnswerKey {
	return AnswerKey{
		Reading: map[string]string{
			"q1": "B", "q2": "A", "q3": "B", "q4": "A", "q5": "A",
			"q6": "FALSE", "q7": "FALSE", "q8": "TRUE", "q9": "FALSE", "q10": "TRUE",
			"q11": "X", "q12": "H", "q13": "B", "q14": "E", "q15": "D",
		},
		Listening: map[string]string{
			"q1": "Donnerstag", "q2": "0611245498", "q3": "Vater und Mutter besuchen", "q4": "Salat", "q5": "20.14",
			"q6": "A", "q7": "C", "q8": "B", "q9": "C", "q10": "B",
			"q11": "A", "q12": "G", "q13": "H", "q14": "C", "q15": "E",
		},
		Writing: WritingKey{
			Mode:         WritingModeWordCount,
			MinWordCount: 20,
			Answers: map[string]string{
				"q1": "80130, München",
				"q2": "m.bialik@in.eu",
				"q3": "Polnisch",
				"q4": "Ja",
				"q5": "Spazieren, Musik",
			},
		},
	}
}

// ExamAnswers is one test-taker's submission. A missing id means unanswered.
type ExamAnswers struct {
	Reading   map[string]string `json:"reading"`
	Listening map[string]string `json:"listening"`
	Writing   map[string]string `json:"writing"`
}

// For returns the answers of a single section.
func (a ExamAnswers) For(section Section) map[string]string {
	switch section {
	case SectionReading:
		return a.Reading
	case SectionListening:
		return a.Listening
	case SectionWriting:
		return a.Writing
	}
	return nil
}

// ExamLayout describes the questions of the current key without revealing any answer.
type ExamLayout struct {
	Reading      []string    `json:"reading"`
	Listening    []string    `json:"listening"`
	Writing      []string    `json:"writing"`
	WritingMode  WritingMode `json:"writingMode"`
	MinWordCount int         `json:"minWordCount,omitempty"`
	PDFURL       string      `json:"pdfUrl,omitempty"`
}

// NewExamLayout derives the layout of a key, with ids in display order.
func NewExamLayout(key AnswerKey) ExamLayout {
	layout := ExamLayout{
		Reading:     orderedQuestionIDs(key.Reading),
		Listening:   orderedQuestionIDs(key.Listening),
		Writing:     orderedQuestionIDs(key.Writing.Answers),
		WritingMode: key.Writing.Mode,
		PDFURL:      key.PDFURL,
	}
	if key.Writing.Mode == WritingModeWordCount {
		layout.MinWordCount = key.Writing.MinWordCount
	}
	return layout
}
