package lsp

import (
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func codeActionParams(uri string, rng protocol.Range, only ...protocol.CodeActionKind) *protocol.CodeActionParams {
	return &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Range:        rng,
		Context:      protocol.CodeActionContext{Only: only},
	}
}

func cursorRange(line, character protocol.UInteger) protocol.Range {
	pos := protocol.Position{Line: line, Character: character}
	return protocol.Range{Start: pos, End: pos}
}

func TestCodeActionExpandsPlainText(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "<body>\n\tul>li.item$*2\n</body>")

	result, err := CodeAction(&glsp.Context{}, codeActionParams(testDocumentURI, cursorRange(1, 14)))
	if err != nil {
		t.Fatalf("CodeAction returned error: %v", err)
	}

	actions, ok := result.([]protocol.CodeAction)
	if !ok || len(actions) != 1 {
		t.Fatalf("CodeAction returned %#v, want one action", result)
	}

	action := actions[0]
	if action.Title != expandActionTitle {
		t.Errorf("Title = %q", action.Title)
	}

	if action.Kind == nil || *action.Kind != protocol.CodeActionKindRefactorRewrite {
		t.Errorf("Kind = %v, want refactor.rewrite", action.Kind)
	}

	edits := action.Edit.Changes[testDocumentURI]
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}

	want := "<ul>\n\t\t<li class=\"item1\"></li>\n\t\t<li class=\"item2\"></li>\n\t</ul>"
	if edits[0].NewText != want {
		t.Errorf("NewText = %q, want %q", edits[0].NewText, want)
	}

	wantRange := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 1},
		End:   protocol.Position{Line: 1, Character: 14},
	}
	if edits[0].Range != wantRange {
		t.Errorf("Range = %+v, want %+v", edits[0].Range, wantRange)
	}
}

func TestCodeActionRespectsKindFilter(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "ul>li")

	tests := []struct {
		only []protocol.CodeActionKind
		want bool
	}{
		{nil, true},
		{[]protocol.CodeActionKind{protocol.CodeActionKindRefactor}, true},
		{[]protocol.CodeActionKind{protocol.CodeActionKindRefactorRewrite}, true},
		{[]protocol.CodeActionKind{protocol.CodeActionKindQuickFix}, false},
		{[]protocol.CodeActionKind{protocol.CodeActionKindRefactorExtract}, false},
	}

	for _, tt := range tests {
		result, err := CodeAction(&glsp.Context{}, codeActionParams(testDocumentURI, cursorRange(0, 5), tt.only...))
		if err != nil {
			t.Fatalf("CodeAction returned error: %v", err)
		}

		if got := result != nil; got != tt.want {
			t.Errorf("only=%v: got action %v, want %v", tt.only, got, tt.want)
		}
	}
}

func TestCodeActionNothingToExpand(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "div>\nul>li")

	ranges := []protocol.Range{
		cursorRange(0, 4),
		cursorRange(0, 0),
		{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 1, Character: 5}},
	}

	for _, rng := range ranges {
		result, err := CodeAction(&glsp.Context{}, codeActionParams(testDocumentURI, rng))
		if err != nil {
			t.Fatalf("CodeAction returned error: %v", err)
		}

		if result != nil {
			t.Errorf("range %+v: got %#v, want nil", rng, result)
		}
	}
}

func TestCodeActionAfterShutdown(t *testing.T) {
	srv := setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "p>a")

	srv.SetShuttingDown()

	result, err := CodeAction(&glsp.Context{}, codeActionParams(testDocumentURI, cursorRange(0, 3)))
	if err != nil {
		t.Fatalf("CodeAction returned error: %v", err)
	}

	if result != nil {
		t.Errorf("CodeAction returned %#v after shutdown, want nil", result)
	}
}
