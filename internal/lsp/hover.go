package lsp

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
)

// Hover handles textDocument/hover. When hoverPreview is enabled it shows
// the plain-text expansion of the abbreviation under the pointer.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv := currentServer("Hover")
	if srv == nil || srv.IsShuttingDown() {
		return nil, nil
	}

	settings := srv.Settings()
	if !settings.HoverPreview {
		return nil, nil
	}

	uri := params.TextDocument.URI

	doc, exists := srv.Documents().Get(uri)
	if !exists || settings.Excluded(doc.LanguageID) {
		return nil, nil
	}

	line, ok := doc.Line(int(params.Position.Line))
	if !ok {
		return nil, nil
	}

	line, candidate, err := expandAt(srv, doc, wordEnd(line, params.Position), true)
	if err != nil {
		log.WithField("uri", uri).Debugf("no hover preview: %v", err)
		return nil, nil
	}

	if candidate == nil {
		return nil, nil
	}

	rng := candidateRange(line, params.Position.Line, candidate)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("```%s\n%s\n```", fence(candidate.Syntax), candidate.NewText),
		},
		Range: &rng,
	}, nil
}

func fence(syntax emmet.Syntax) string {
	if syntax == emmet.SyntaxStylesheet {
		return "css"
	}

	return "html"
}
