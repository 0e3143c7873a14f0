package lsp

import (
	stdcontext "context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
	"github.com/CWBudde/go-emmet-lsp/internal/telemetry"
)

// CompletionData is attached to every completion item and returned by the
// client on completionItem/resolve.
type CompletionData struct {
	Abbreviation string `json:"abbreviation"`
	Syntax       string `json:"syntax"`
	RequestID    string `json:"requestId"`
}

func emptyCompletions() *protocol.CompletionList {
	return &protocol.CompletionList{IsIncomplete: true, Items: []protocol.CompletionItem{}}
}

// Completion handles the textDocument/completion request. It offers at most
// one item: the expansion of the abbreviation that ends at the cursor.
// The list is always marked incomplete because every keystroke changes the
// abbreviation.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	srv := currentServer("Completion")
	if srv == nil || srv.IsShuttingDown() {
		return emptyCompletions(), nil
	}

	uri := params.TextDocument.URI
	pos := params.Position

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Warnf("document not found for completion: %s", uri)
		return emptyCompletions(), nil
	}

	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{
		"request":   requestID,
		"uri":       uri,
		"line":      pos.Line,
		"character": pos.Character,
	})

	completions := srv.Telemetry().Completions()
	handle, _ := completions.Start(stdcontext.Background(), telemetry.RequestInfo{
		RequestID: requestID,
		URI:       uri,
		Language:  doc.LanguageID,
		Line:      int(pos.Line),
		Character: int(pos.Character),
	})

	if srv.Settings().Excluded(doc.LanguageID) {
		logger.Debugf("completions disabled for %s", doc.LanguageID)
		completions.Finish(handle, telemetry.OutcomeExcluded, "", nil)

		return emptyCompletions(), nil
	}

	snippets := srv.SupportsSnippets()

	line, candidate, err := expandAt(srv, doc, pos, !snippets)
	if err != nil {
		var pe *emmet.ParseError
		if errors.As(err, &pe) {
			logger.WithField("offset", pe.Pos).Debugf("malformed abbreviation %q: %s", pe.Abbreviation, pe.Msg)
			completions.Finish(handle, telemetry.OutcomeMalformed, pe.Abbreviation, err)
			logMessage(context, protocol.MessageTypeLog, fmt.Sprintf("ERR: %v", err))
		} else {
			logger.Errorf("completion failed: %v", err)
			completions.Finish(handle, telemetry.OutcomeError, "", err)
			logMessage(context, protocol.MessageTypeError, fmt.Sprintf("ERR: %v", err))
		}

		return emptyCompletions(), nil
	}

	if candidate == nil {
		completions.Finish(handle, telemetry.OutcomeEmpty, "", nil)
		return emptyCompletions(), nil
	}

	for _, w := range candidate.Warnings {
		logger.Warn(w)
	}

	item := completionItem(candidate, candidateRange(line, pos.Line, candidate), requestID, snippets)

	logger.WithField("abbreviation", candidate.Label).Debug("expanded")
	traceMessage(context, fmt.Sprintf("expanded %q", candidate.Label))
	completions.Finish(handle, telemetry.OutcomeExpanded, candidate.Label, nil)

	return &protocol.CompletionList{
		IsIncomplete: true,
		Items:        []protocol.CompletionItem{item},
	}, nil
}

func completionItem(c *emmet.Candidate, rng protocol.Range, requestID string, snippets bool) protocol.CompletionItem {
	kind := protocol.CompletionItemKindSnippet
	format := insertTextFormat(snippets)
	detail := c.Detail
	filter := c.Label

	return protocol.CompletionItem{
		Label:            c.Label,
		Kind:             &kind,
		Detail:           &detail,
		Documentation:    c.Documentation,
		FilterText:       &filter,
		InsertTextFormat: &format,
		TextEdit: protocol.TextEdit{
			Range:   rng,
			NewText: c.NewText,
		},
		Data: CompletionData{
			Abbreviation: c.Label,
			Syntax:       c.Syntax.String(),
			RequestID:    requestID,
		},
	}
}

// CompletionResolve handles completionItem/resolve by tagging the item's
// insert format. Everything else was computed eagerly.
func CompletionResolve(context *glsp.Context, params *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	snippets := true
	if srv := currentServer("CompletionResolve"); srv != nil {
		snippets = srv.SupportsSnippets()
	}

	format := insertTextFormat(snippets)
	params.InsertTextFormat = &format

	return params, nil
}

// insertTextFormat picks snippet syntax only for clients that expand it;
// others get plain text without tab stops.
func insertTextFormat(snippets bool) protocol.InsertTextFormat {
	if snippets {
		return protocol.InsertTextFormatSnippet
	}

	return protocol.InsertTextFormatPlainText
}
