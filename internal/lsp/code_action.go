package lsp

import (
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const expandActionTitle = "Expand abbreviation"

// CodeAction handles textDocument/codeAction. It offers one rewrite that
// replaces the abbreviation ending at the range end with its plain-text
// expansion, for clients that do not use snippet completions.
func CodeAction(context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	srv := currentServer("CodeAction")
	if srv == nil || srv.IsShuttingDown() {
		return nil, nil
	}

	if !wantsRewrite(params.Context.Only) {
		return nil, nil
	}

	uri := params.TextDocument.URI

	doc, exists := srv.Documents().Get(uri)
	if !exists || srv.Settings().Excluded(doc.LanguageID) {
		return nil, nil
	}

	// A multi-line selection cannot hold an abbreviation.
	if params.Range.Start.Line != params.Range.End.Line {
		return nil, nil
	}

	line, candidate, err := expandAt(srv, doc, params.Range.End, true)
	if err != nil {
		log.WithField("uri", uri).Debugf("no code action: %v", err)
		return nil, nil
	}

	if candidate == nil {
		return nil, nil
	}

	kind := protocol.CodeActionKindRefactorRewrite

	return []protocol.CodeAction{{
		Title: expandActionTitle,
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				uri: {{
					Range:   candidateRange(line, params.Range.End.Line, candidate),
					NewText: indentFollowing(candidate.NewText, line),
				}},
			},
		},
	}}, nil
}

// wantsRewrite reports whether a kind filter admits refactor.rewrite.
func wantsRewrite(only []protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}

	return slices.ContainsFunc(only, func(k protocol.CodeActionKind) bool {
		return k == protocol.CodeActionKindRefactorRewrite ||
			strings.HasPrefix(protocol.CodeActionKindRefactorRewrite, k+".")
	})
}
