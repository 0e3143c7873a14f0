package lsp

import (
	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeConfiguration reloads the settings. The client sends its whole
// settings object; only the "emmet" section is read. Options that fail
// validation are reported and fall back to their defaults.
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv := currentServer("DidChangeConfiguration")
	if srv == nil {
		return nil
	}

	warnings, err := srv.ReloadSettings(params.Settings)
	for _, w := range warnings {
		log.Warn(w)
		logMessage(context, protocol.MessageTypeWarning, w.Error())
	}

	if err != nil {
		log.Errorf("configuration rejected: %v", err)
		logMessage(context, protocol.MessageTypeError, "emmet configuration rejected: "+err.Error())

		return nil
	}

	setTrace(srv, srv.Trace())
	log.WithField("warnings", len(warnings)).Info("configuration updated")

	return nil
}

// DidChangeWorkspaceFolders keeps the folder list current.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv := currentServer("DidChangeWorkspaceFolders")
	if srv == nil {
		return nil
	}

	for _, folder := range params.Event.Added {
		log.Infof("workspace folder added: %s (%s)", folder.Name, folder.URI)
	}

	for _, folder := range params.Event.Removed {
		log.Infof("workspace folder removed: %s (%s)", folder.Name, folder.URI)
	}

	srv.UpdateWorkspaceFolders(params.Event.Added, params.Event.Removed)

	return nil
}
