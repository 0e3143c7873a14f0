// Package lsp implements LSP protocol handlers.
package lsp

import (
	stdcontext "context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/server"
)

// Name identifies the server to clients.
const Name = "go-emmet-lsp"

// Version is reported in the initialize result. It is set at build time.
var Version = "0.1.0"

var (
	// serverInstance holds the global server instance.
	// This is set by SetServer and accessed by handlers.
	serverInstance interface{}
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv interface{}) {
	serverInstance = srv
}

func currentServer(method string) *server.Server {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Warnf("server instance not available in %s", method)
		return nil
	}

	return srv
}

// Initialize handles the LSP initialize request.
// It records the client capabilities and announces what the server supports.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	srv := currentServer("Initialize")

	if srv != nil {
		srv.SetClientCapabilities(&params.Capabilities)
		srv.SetWorkspaceFolders(params.WorkspaceFolders)

		if params.Trace != nil {
			setTrace(srv, string(*params.Trace))
		}
	}

	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
		},

		CompletionProvider: &protocol.CompletionOptions{
			ResolveProvider: &trueVal,
		},

		HoverProvider: &trueVal,

		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{
				protocol.CodeActionKindRefactorRewrite,
			},
		},
	}

	if srv != nil && srv.SupportsWorkspaceFolders() {
		capabilities.Workspace = &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &trueVal,
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		}
	}

	version := Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

// Initialized handles the initialized notification. Clients that support
// dynamic registration are asked to send configuration changes.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv := currentServer("Initialized")
	if srv == nil || !srv.SupportsConfigurationRegistration() {
		return nil
	}

	if context == nil || context.Call == nil {
		return nil
	}

	id := uuid.NewString()

	go context.Call(protocol.ServerClientRegisterCapability, protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     id,
			Method: protocol.MethodWorkspaceDidChangeConfiguration,
		}},
	}, nil)

	log.WithField("id", id).Debug("registered for workspace/didChangeConfiguration")

	return nil
}

// Shutdown handles the shutdown request. Telemetry is flushed here because
// the process may exit right after the exit notification.
func Shutdown(context *glsp.Context) error {
	srv := currentServer("Shutdown")
	if srv == nil {
		return nil
	}

	srv.SetShuttingDown()

	ctx := stdcontext.Background()

	// Metrics cannot be collected once the reader is shut down.
	if counts, err := srv.Telemetry().CompletionCounts(ctx); err == nil && counts != nil {
		log.WithField("completions", counts).Info("completion summary")
	}

	if err := srv.Telemetry().Shutdown(ctx); err != nil {
		log.Errorf("telemetry shutdown: %v", err)
	}

	return nil
}

// SetTrace handles $/setTrace.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	if srv := currentServer("SetTrace"); srv != nil {
		setTrace(srv, string(params.Value))
	}

	return nil
}

func setTrace(srv *server.Server, value string) {
	switch value {
	case "off", "messages", "message", "verbose":
	default:
		log.Warnf("ignoring unknown trace value %q", value)
		return
	}

	srv.SetTrace(value)
	protocol.SetTraceValue(protocol.TraceValue(value))
}
