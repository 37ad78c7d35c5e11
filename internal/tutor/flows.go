package tutor

import (
	"context"
	"fmt"

	"github.com/brightclass/aigateway/internal/content"
)

// Canned flows with fixed system instructions. Each is a thin wrapper over
// Ask with its own action label for usage accounting.

const askQuestionInstruction = `You are an expert teacher.
Use the information in the given context to answer the questions.`

const teacherNotesInstruction = `Use the information in the given context.
Generate detailed notes for the teacher.
The teacher will use these notes to conduct training for the students.`

const bulkQuestionsInstructionFmt = `Based on the given context, generate %d questions.
Questions can be a mix of multi-choice and/or multi-select questions.
There must be 4 choices.`

// AskQuestion answers a student question against the referenced lesson
// material.
func (s *Service) AskQuestion(ctx context.Context, tenantID, conversationID, question string, refs []content.Reference) (Answer, error) {
	return s.Ask(ctx, AskInput{
		TenantID:       tenantID,
		ConversationID: conversationID,
		System:         askQuestionInstruction,
		References:     refs,
		Question:       question,
		Action:         "ask_question",
	})
}

// TeacherNotes generates lesson notes for the teacher.
func (s *Service) TeacherNotes(ctx context.Context, tenantID, conversationID, prompt string, refs []content.Reference) (Answer, error) {
	return s.Ask(ctx, AskInput{
		TenantID:       tenantID,
		ConversationID: conversationID,
		System:         teacherNotesInstruction,
		References:     refs,
		Question:       prompt,
		Action:         "generate_teacher_notes",
	})
}

// BulkAssessmentQuestions generates n assessment questions from the
// referenced material.
func (s *Service) BulkAssessmentQuestions(ctx context.Context, tenantID, conversationID, instruction string, n int, refs []content.Reference) (Answer, error) {
	if n <= 0 {
		n = 10
	}
	return s.Ask(ctx, AskInput{
		TenantID:       tenantID,
		ConversationID: conversationID,
		System:         fmt.Sprintf(bulkQuestionsInstructionFmt, n),
		References:     refs,
		Question:       instruction,
		Action:         "generate_bulk_assessment_questions",
	})
}
