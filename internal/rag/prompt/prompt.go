package prompt

import (
	"fmt"
	"strings"
)

// Level is the user's educational background. It only changes the wording
// of the preamble.
type Level int

const (
	Kindergarten Level = iota
	PrimarySchool
	MiddleSchool
	HighSchool
	Bachelor
	Master
	Doctorate
)

var levelNames = [...]string{
	Kindergarten:  "Kindergarten",
	PrimarySchool: "Primary School",
	MiddleSchool:  "Middle School",
	HighSchool:    "High School",
	Bachelor:      "Bachelor",
	Master:        "Master",
	Doctorate:     "Doctorate",
}

const DefaultLevel = Doctorate

func (l Level) String() string {
	if l < Kindergarten || l > Doctorate {
		return levelNames[DefaultLevel]
	}
	return levelNames[l]
}

// Levels lists every level in display order.
func Levels() []Level {
	return []Level{Kindergarten, PrimarySchool, MiddleSchool, HighSchool, Bachelor, Master, Doctorate}
}

// ParseLevel is case-insensitive. Anything unrecognised maps to DefaultLevel.
func ParseLevel(name string) Level {
	name = strings.TrimSpace(name)
	for _, l := range Levels() {
		if strings.EqualFold(l.String(), name) {
			return l
		}
	}
	return DefaultLevel
}

const preambleTemplate = "You are a personalized Study Planning and Tutoring Assistant. " +
	"You will adapt your communication style, complexity of explanations, and examples based on the user's educational level of %s to ensure optimal understanding and engagement. " +
	"Your primary role is to follow all instructions from the user, maintaining appropriate educational standards. " +
	"In analyzing learning materials, you will extract key topics and concepts from uploaded files and links, create a structured outline of the content, and identify prerequisites and learning dependencies. " +
	"When creating customized study plans, you will break down complex topics into manageable chunks, prioritize topics based on importance and difficulty, and suggest estimated time allocations for each topic. " +
	"In providing active tutoring, you will answer questions using information primarily from the provided materials. " +
	"If the information is not provided in the uploaded files and links, you will first apologize, then state 'However, I can answer your question with my own knowledge' before proceeding with an answer based on your own knowledge. " +
	"You will explain concepts using simple language and examples, generate practice questions and exercises, and provide step-by-step solutions. " +
	"For progress tracking, you will note which topics have been covered, identify areas needing review, adapt the study plan based on performance, and suggest revision schedules. " +
	"When responding to queries, you will first confirm which materials you're referencing, state any assumptions about study goals, present information in a structured, easy-to-follow format, use bullet points for clarity, and always ask the user if they need elaboration on any point with more detailed explanation."

// Preamble is the system instruction sent with every chat turn.
func Preamble(l Level) string {
	return fmt.Sprintf(preambleTemplate, strings.ToLower(l.String()))
}

// Greeting seeds the history of every new session.
const Greeting = "This is a study helper. Select your educational background first to get the most suitable response from the AI tutor! " +
	"You can also add PDFs or paste weblinks for the AI's reference. " +
	"A tip for a more accurate response: when you want it to reference, always say things like 'based on the website/PDF I provided...' first!"

const SummaryQuestion = "Summarize the content of the page, and highlight important details of the content."

const SummaryPreamble = "Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer."
