package messagequeue_test

import (
	"testing"

	"github.com/epicflowhq/epicflow/internal/port/messagequeue"
)

func TestValidate_ValidRoutedPayload(t *testing.T) {
	data := []byte(`{"result_id":"r1","issue_number":42,"epic_type":"foundation","primary":"infra-agent","execution_strategy":"sequential"}`)
	if err := messagequeue.Validate(messagequeue.SubjectEpicRouted, data); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidate_InvalidJSON(t *testing.T) {
	if err := messagequeue.Validate(messagequeue.SubjectEpicRouted, []byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	// issue_number must be numeric.
	data := []byte(`{"issue_number":"forty-two"}`)
	if err := messagequeue.Validate(messagequeue.SubjectEpicAnalyzed, data); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestValidate_UnknownSubjectPasses(t *testing.T) {
	if err := messagequeue.Validate("epics.future", []byte(`{"anything":true}`)); err != nil {
		t.Fatalf("unknown subject should pass, got %v", err)
	}
}
