package lsp

import (
	stdcontext "context"
	"encoding/json"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/server"
	"github.com/CWBudde/go-emmet-lsp/internal/telemetry"
)

func completionParams(uri string, line, character protocol.UInteger) *protocol.CompletionParams {
	return &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: character},
		},
	}
}

func callCompletion(t *testing.T, ctx *glsp.Context, params *protocol.CompletionParams) *protocol.CompletionList {
	t.Helper()

	result, err := Completion(ctx, params)
	if err != nil {
		t.Fatalf("Completion returned error: %v", err)
	}

	list, ok := result.(*protocol.CompletionList)
	if !ok {
		t.Fatalf("Completion returned %T, want *protocol.CompletionList", result)
	}

	if !list.IsIncomplete {
		t.Error("completion list must be marked incomplete")
	}

	return list
}

func TestCompletionMarkup(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "<body>\n  ul>li*2\n</body>")

	list := callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 1, 9))
	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(list.Items))
	}

	item := list.Items[0]

	if item.Label != "ul>li*2" {
		t.Errorf("Label = %q, want %q", item.Label, "ul>li*2")
	}

	if item.Detail == nil || *item.Detail != "ul>li*2" {
		t.Errorf("Detail = %v, want ul>li*2", item.Detail)
	}

	if item.Kind == nil || *item.Kind != protocol.CompletionItemKindSnippet {
		t.Errorf("Kind = %v, want Snippet", item.Kind)
	}

	if item.InsertTextFormat == nil || *item.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Errorf("InsertTextFormat = %v, want Snippet", item.InsertTextFormat)
	}

	want := "<ul>\n\t<li>${1}</li>\n\t<li>${2}</li>\n</ul>"

	edit, ok := item.TextEdit.(protocol.TextEdit)
	if !ok {
		t.Fatalf("TextEdit has type %T", item.TextEdit)
	}

	if edit.NewText != want {
		t.Errorf("NewText = %q, want %q", edit.NewText, want)
	}

	wantRange := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 9},
	}
	if edit.Range != wantRange {
		t.Errorf("Range = %+v, want %+v", edit.Range, wantRange)
	}

	if item.Documentation != want {
		t.Errorf("Documentation = %v, want %q", item.Documentation, want)
	}

	data, ok := item.Data.(CompletionData)
	if !ok {
		t.Fatalf("Data has type %T", item.Data)
	}

	if data.Abbreviation != "ul>li*2" || data.Syntax != "markup" || data.RequestID == "" {
		t.Errorf("Data = %+v", data)
	}
}

func TestCompletionStylesheet(t *testing.T) {
	setupTestServer(t)
	openDocument(t, "file:///test/site.css", "css", "a {\n\tm10+p5\n}")

	list := callCompletion(t, &glsp.Context{}, completionParams("file:///test/site.css", 1, 7))
	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(list.Items))
	}

	edit := list.Items[0].TextEdit.(protocol.TextEdit)
	if edit.NewText != "margin: 10px;\npadding: 5px;" {
		t.Errorf("NewText = %q", edit.NewText)
	}

	if data := list.Items[0].Data.(CompletionData); data.Syntax != "stylesheet" {
		t.Errorf("Syntax = %q, want stylesheet", data.Syntax)
	}
}

func TestCompletionUTF16Positions(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "😀 b")

	list := callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 0, 4))
	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(list.Items))
	}

	edit := list.Items[0].TextEdit.(protocol.TextEdit)
	if edit.Range.Start.Character != 3 || edit.Range.End.Character != 4 {
		t.Errorf("Range = %+v, want characters 3..4", edit.Range)
	}

	if edit.NewText != "<b>${1}</b>" {
		t.Errorf("NewText = %q", edit.NewText)
	}
}

func TestCompletionNoItems(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		line      protocol.UInteger
		character protocol.UInteger
	}{
		{"empty line", "", 0, 0},
		{"whitespace", "    ", 0, 4},
		{"closed tag", "<div>", 0, 5},
		{"line out of range", "ul", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServer(t)
			openDocument(t, testDocumentURI, "html", tt.text)

			list := callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, tt.line, tt.character))
			if len(list.Items) != 0 {
				t.Errorf("got %d items, want 0", len(list.Items))
			}
		})
	}
}

func TestCompletionUnknownDocument(t *testing.T) {
	setupTestServer(t)

	list := callCompletion(t, &glsp.Context{}, completionParams("file:///missing.html", 0, 0))
	if len(list.Items) != 0 {
		t.Errorf("got %d items, want 0", len(list.Items))
	}
}

func TestCompletionMalformedLogsToClient(t *testing.T) {
	setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "div>")

	var rec recorder

	list := callCompletion(t, rec.context(), completionParams(testDocumentURI, 0, 4))
	if len(list.Items) != 0 {
		t.Errorf("got %d items, want 0", len(list.Items))
	}

	logged := rec.logged()
	if len(logged) != 1 {
		t.Fatalf("got %d log messages, want 1", len(logged))
	}

	if logged[0].Type != protocol.MessageTypeLog {
		t.Errorf("message type = %v, want Log", logged[0].Type)
	}
}

func TestCompletionExcludedLanguage(t *testing.T) {
	srv := setupTestServer(t)

	if _, err := srv.ReloadSettings(map[string]any{
		"emmet": map[string]any{"excludeLanguages": []any{"markdown"}},
	}); err != nil {
		t.Fatalf("ReloadSettings returned error: %v", err)
	}

	openDocument(t, "file:///test/README.md", "markdown", "ul>li")

	list := callCompletion(t, &glsp.Context{}, completionParams("file:///test/README.md", 0, 5))
	if len(list.Items) != 0 {
		t.Errorf("got %d items, want 0", len(list.Items))
	}
}

func TestCompletionUsesSettings(t *testing.T) {
	srv := setupTestServer(t)

	if _, err := srv.ReloadSettings(map[string]any{
		"emmet": map[string]any{
			"stylesheetLanguages": []any{"postcss"},
			"intUnit":             "rem",
		},
	}); err != nil {
		t.Fatalf("ReloadSettings returned error: %v", err)
	}

	openDocument(t, "file:///test/a.pcss", "postcss", "m2")

	list := callCompletion(t, &glsp.Context{}, completionParams("file:///test/a.pcss", 0, 2))
	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(list.Items))
	}

	if got := list.Items[0].TextEdit.(protocol.TextEdit).NewText; got != "margin: 2rem;" {
		t.Errorf("NewText = %q, want %q", got, "margin: 2rem;")
	}
}

func TestCompletionRecordsTelemetry(t *testing.T) {
	provider, err := telemetry.Setup(stdcontext.Background(), telemetry.Config{EnableMetrics: true})
	if err != nil {
		t.Fatalf("telemetry.Setup returned error: %v", err)
	}

	t.Cleanup(func() { _ = provider.Shutdown(stdcontext.Background()) })

	setupTestServer(t, server.WithTelemetry(provider))
	openDocument(t, testDocumentURI, "html", "ul>li\ndiv>\n")

	callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 0, 5))
	callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 1, 4))
	callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 2, 0))

	counts, err := provider.CompletionCounts(stdcontext.Background())
	if err != nil {
		t.Fatalf("CompletionCounts returned error: %v", err)
	}

	want := map[string]int64{
		telemetry.OutcomeExpanded:  1,
		telemetry.OutcomeMalformed: 1,
		telemetry.OutcomeEmpty:     1,
	}

	for outcome, n := range want {
		if counts[outcome] != n {
			t.Errorf("counts[%s] = %d, want %d (all: %v)", outcome, counts[outcome], n, counts)
		}
	}
}

func TestCompletionResolve(t *testing.T) {
	item := &protocol.CompletionItem{Label: "ul>li"}

	resolved, err := CompletionResolve(&glsp.Context{}, item)
	if err != nil {
		t.Fatalf("CompletionResolve returned error: %v", err)
	}

	if resolved.InsertTextFormat == nil || *resolved.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Errorf("InsertTextFormat = %v, want Snippet", resolved.InsertTextFormat)
	}

	if resolved.Label != "ul>li" {
		t.Errorf("Label = %q", resolved.Label)
	}
}

func TestCompletionPlainTextClient(t *testing.T) {
	srv := setupTestServer(t)

	var caps protocol.ClientCapabilities
	if err := json.Unmarshal([]byte(`{"textDocument": {"completion": {"completionItem": {"snippetSupport": false}}}}`), &caps); err != nil {
		t.Fatalf("decoding capabilities: %v", err)
	}

	srv.SetClientCapabilities(&caps)
	openDocument(t, testDocumentURI, "html", "ul>li*2")

	list := callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 0, 7))
	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(list.Items))
	}

	item := list.Items[0]
	if item.InsertTextFormat == nil || *item.InsertTextFormat != protocol.InsertTextFormatPlainText {
		t.Errorf("InsertTextFormat = %v, want PlainText", item.InsertTextFormat)
	}

	want := "<ul>\n\t<li></li>\n\t<li></li>\n</ul>"
	if edit := item.TextEdit.(protocol.TextEdit); edit.NewText != want {
		t.Errorf("NewText = %q, want %q", edit.NewText, want)
	}

	resolved, err := CompletionResolve(&glsp.Context{}, &item)
	if err != nil {
		t.Fatalf("CompletionResolve returned error: %v", err)
	}

	if resolved.InsertTextFormat == nil || *resolved.InsertTextFormat != protocol.InsertTextFormatPlainText {
		t.Errorf("resolved InsertTextFormat = %v, want PlainText", resolved.InsertTextFormat)
	}
}

func TestCompletionAfterShutdown(t *testing.T) {
	srv := setupTestServer(t)
	openDocument(t, testDocumentURI, "html", "ul>li")

	srv.SetShuttingDown()

	list := callCompletion(t, &glsp.Context{}, completionParams(testDocumentURI, 0, 5))
	if len(list.Items) != 0 {
		t.Errorf("got %d items after shutdown, want none", len(list.Items))
	}
}
