package transcription

import "testing"

func TestParseGrade(t *testing.T) {
	grade, err := parseGrade(`{"score": 82, "feedback": "Solid answer."}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if grade.Score != 82 || grade.Feedback != "Solid answer." {
		t.Fatalf("unexpected grade %+v", grade)
	}
}

func TestParseGradeToleratesProse(t *testing.T) {
	grade, err := parseGrade("Here is the result:\n{\"score\": 55, \"feedback\": \"Needs depth.\"}\nThanks!")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if grade.Score != 55 {
		t.Fatalf("unexpected score %v", grade.Score)
	}
}

func TestParseGradeRejectsGarbage(t *testing.T) {
	if _, err := parseGrade("no json here"); err == nil {
		t.Fatal("expected error for missing object")
	}
	if _, err := parseGrade(`{"score": 180, "feedback": "x"}`); err == nil {
		t.Fatal("expected error for out-of-range score")
	}
}
