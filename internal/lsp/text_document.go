package lsp

import (
	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/document"
	"github.com/CWBudde/go-emmet-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv := currentServer("DidOpen")
	if srv == nil {
		return nil
	}

	item := params.TextDocument

	srv.Documents().Set(item.URI, &server.Document{
		URI:        item.URI,
		Text:       item.Text,
		Version:    int(item.Version),
		LanguageID: item.LanguageID,
	})

	log.WithFields(log.Fields{
		"uri":      item.URI,
		"version":  item.Version,
		"language": item.LanguageID,
		"bytes":    len(item.Text),
	}).Debug("document opened")

	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv := currentServer("DidClose")
	if srv == nil {
		return nil
	}

	srv.Documents().Delete(params.TextDocument.URI)
	log.WithField("uri", params.TextDocument.URI).Debug("document closed")

	return nil
}

// DidChange handles the textDocument/didChange notification. Changes are
// applied in order; a change that cannot be applied is skipped so the
// remaining text stays consistent with what the server last saw.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv := currentServer("DidChange")
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	found, _ := srv.Documents().Update(uri, func(doc *server.Document) (*server.Document, error) {
		text := doc.Text

		for i, raw := range params.ContentChanges {
			change, ok := contentChange(raw)
			if !ok {
				log.Warnf("invalid content change type %T at index %d for %s", raw, i, uri)
				continue
			}

			updated, err := document.ApplyContentChange(text, change)
			if err != nil {
				log.Errorf("applying change %d/%d to %s: %v", i+1, len(params.ContentChanges), uri, err)
				continue
			}

			text = updated
		}

		return &server.Document{
			URI:        uri,
			Text:       text,
			Version:    version,
			LanguageID: doc.LanguageID,
		}, nil
	})

	if !found {
		log.Warnf("document not found for didChange: %s", uri)
		return nil
	}

	log.WithFields(log.Fields{"uri": uri, "version": version, "changes": len(params.ContentChanges)}).
		Trace("document changed")

	return nil
}

// contentChange normalizes the two change event shapes glsp decodes into.
func contentChange(raw any) (protocol.TextDocumentContentChangeEvent, bool) {
	switch c := raw.(type) {
	case protocol.TextDocumentContentChangeEvent:
		return c, true
	case protocol.TextDocumentContentChangeEventWhole:
		return protocol.TextDocumentContentChangeEvent{Text: c.Text}, true
	default:
		return protocol.TextDocumentContentChangeEvent{}, false
	}
}
