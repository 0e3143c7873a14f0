package lsp

import (
	"strings"
	"unicode"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/document"
	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
	"github.com/CWBudde/go-emmet-lsp/internal/server"
)

// NewHandler returns the glsp handler table with every supported method.
func NewHandler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidClose:  DidClose,

		TextDocumentCompletion: Completion,
		CompletionItemResolve:  CompletionResolve,
		TextDocumentHover:      Hover,
		TextDocumentCodeAction: CodeAction,

		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
	}
}

// expandAt runs the engine on the line at pos. A nil candidate and nil
// error mean there is nothing to expand. Plain output drops tab stops and
// snippet escaping.
func expandAt(srv *server.Server, doc *server.Document, pos protocol.Position, plain bool) (string, *emmet.Candidate, error) {
	line, ok := doc.Line(int(pos.Line))
	if !ok {
		return "", nil, nil
	}

	ov := srv.Overrides()
	if plain {
		ov.Field = emmet.PlainField
		ov.Text = func(s string) string { return s }
	}

	candidate, err := emmet.Complete(emmet.Request{
		Line:                line,
		Cursor:              document.UTF16ToRuneOffset(line, int(pos.Character)),
		Language:            doc.LanguageID,
		StylesheetLanguages: srv.Settings().StylesheetLanguages,
		Overrides:           ov,
	})

	return line, candidate, err
}

// candidateRange converts the candidate's rune span to an LSP range.
func candidateRange(line string, lineNr protocol.UInteger, c *emmet.Candidate) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: lineNr, Character: protocol.UInteger(document.RuneToUTF16Offset(line, c.Start))},
		End:   protocol.Position{Line: lineNr, Character: protocol.UInteger(document.RuneToUTF16Offset(line, c.End))},
	}
}

// wordEnd moves a UTF-16 column to the end of the abbreviation-like run it
// sits in, so that hovering anywhere over an abbreviation expands all of it.
func wordEnd(line string, pos protocol.Position) protocol.Position {
	runes := []rune(line)

	i := document.UTF16ToRuneOffset(line, int(pos.Character))
	for i < len(runes) && !unicode.IsSpace(runes[i]) && !strings.ContainsRune("<;", runes[i]) {
		i++
	}

	pos.Character = protocol.UInteger(document.RuneToUTF16Offset(line, i))

	return pos
}

// indentFollowing prefixes every line after the first with the leading
// whitespace of line.
func indentFollowing(text, line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	if indent == "" {
		return text
	}

	return strings.ReplaceAll(text, "\n", "\n"+indent)
}

// logMessage sends window/logMessage when a client is attached.
func logMessage(context *glsp.Context, kind protocol.MessageType, message string) {
	if context == nil || context.Notify == nil {
		return
	}

	context.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    kind,
		Message: message,
	})
}

// traceMessage sends a log message subject to the client's trace level.
func traceMessage(context *glsp.Context, message string) {
	if context == nil || context.Notify == nil {
		return
	}

	_ = protocol.Trace(context, protocol.MessageTypeLog, message)
}
