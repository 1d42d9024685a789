package domain

import "testing"

func TestStageCategories(t *testing.T) {
	tests := []struct {
		stage Stage
		chat  bool
		exam  bool
		round int
	}{
		{StageFSLSM, false, false, 0},
		{StageChat1, true, false, 1},
		{StageExam1, false, true, 1},
		{StageChat3, true, false, 3},
		{StageExam3, false, true, 3},
		{StagePostTest, false, false, 0},
		{StageEnd, false, false, 0},
		{StageNone, false, false, 0},
		{Stage("chatroom"), false, false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.IsChatStage(); got != tt.chat {
				t.Errorf("IsChatStage() = %v, want %v", got, tt.chat)
			}
			if got := tt.stage.IsExamStage(); got != tt.exam {
				t.Errorf("IsExamStage() = %v, want %v", got, tt.exam)
			}
			if got := tt.stage.Round(); got != tt.round {
				t.Errorf("Round() = %d, want %d", got, tt.round)
			}
		})
	}
}

func TestStageIndex(t *testing.T) {
	if StageFSLSM.Index() != 0 {
		t.Errorf("expected fslsm at index 0, got %d", StageFSLSM.Index())
	}
	if StagePostTest.Index() != 7 {
		t.Errorf("expected post_test at index 7, got %d", StagePostTest.Index())
	}
	if StageEnd.Index() != -1 {
		t.Errorf("expected end to be outside the timeline, got %d", StageEnd.Index())
	}
	if Stage("bogus").Index() != -1 {
		t.Errorf("expected unknown stage index -1")
	}
}

func TestParseStage(t *testing.T) {
	if s, err := ParseStage("exam2"); err != nil || s != StageExam2 {
		t.Fatalf("ParseStage(exam2) = %q, %v", s, err)
	}
	if s, err := ParseStage("end"); err != nil || s != StageEnd {
		t.Fatalf("ParseStage(end) = %q, %v", s, err)
	}
	if _, err := ParseStage("chat4"); err == nil {
		t.Fatal("expected error for chat4")
	}
}

func TestChatAndExamStage(t *testing.T) {
	if ChatStage(2) != StageChat2 || ExamStage(3) != StageExam3 {
		t.Fatal("unexpected stage construction")
	}
	if ChatStage(0) != StageNone || ExamStage(4) != StageNone {
		t.Fatal("expected out-of-range rounds to yield StageNone")
	}
}

func TestOrderedStagesIsCopy(t *testing.T) {
	stages := OrderedStages()
	stages[0] = StageEnd
	if OrderedStages()[0] != StageFSLSM {
		t.Fatal("mutating the returned slice changed the canonical order")
	}
}
