package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeParseFailed, "parse error").WithContext("record", 3)

	msg := err.Error()
	if !strings.Contains(msg, "E201") || !strings.Contains(msg, "record=3") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(cause, CodeReadFailed, "reading ledger")

	if !stderrors.Is(err, cause) {
		t.Error("Wrapped cause lost")
	}
	if GetCode(err) != CodeReadFailed {
		t.Errorf("GetCode = %q", GetCode(err))
	}

	if Wrap(nil, CodeReadFailed, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestClassification(t *testing.T) {
	sizing := SizeUnknown("/ledger.json", stderrors.New("stat failed"))
	stream := ParseError(7, stderrors.New("bad token"))

	if !IsSizing(sizing) || IsStream(sizing) {
		t.Errorf("Sizing error misclassified: %v", sizing)
	}
	if !IsStream(stream) || IsSizing(stream) {
		t.Errorf("Stream error misclassified: %v", stream)
	}
	if !IsCode(stream, CodeParseFailed) {
		t.Error("IsCode missed the parse code")
	}

	plain := stderrors.New("plain")
	if IsSizing(plain) || IsStream(plain) || GetCode(plain) != CodeUnknown {
		t.Error("Plain errors must classify as unknown")
	}
}
