// Package server holds the state shared by the LSP handlers.
package server

import (
	"slices"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-emmet-lsp/internal/config"
	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
	"github.com/CWBudde/go-emmet-lsp/internal/telemetry"
)

// Server holds the state of the LSP server.
type Server struct {
	documents *DocumentStore

	// loader re-reads the settings file layer on every reload.
	loader    *config.Loader
	telemetry *telemetry.Provider

	settings  *config.Settings
	overrides emmet.Overrides
	trace     string

	workspaceFolders   []protocol.WorkspaceFolder
	clientCapabilities *protocol.ClientCapabilities

	mu           sync.RWMutex
	shuttingDown bool
}

// Option configures a Server.
type Option func(*Server)

// WithLoader sets the settings loader. Without one only client settings
// apply.
func WithLoader(l *config.Loader) Option {
	return func(s *Server) { s.loader = l }
}

// WithTelemetry sets the telemetry provider.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(s *Server) { s.telemetry = p }
}

// New creates a server with default settings.
func New(opts ...Option) *Server {
	s := &Server{documents: NewDocumentStore()}

	for _, opt := range opts {
		opt(s)
	}

	if s.loader == nil {
		s.loader, _ = config.NewLoader("")
	}

	s.apply(config.Default())

	return s
}

// ReloadSettings merges the settings file with the client settings and makes
// the result current. Rejected options come back as warnings. On error the
// previous settings stay in effect.
func (s *Server) ReloadSettings(lsp any) ([]error, error) {
	settings, warnings, err := s.loader.Load(lsp)
	if err != nil {
		return warnings, err
	}

	warnings = append(warnings, s.apply(settings)...)

	return warnings, nil
}

func (s *Server) apply(settings *config.Settings) []error {
	overrides, errs := settings.Overrides()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.overrides = overrides
	s.trace = settings.Trace

	return errs
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Telemetry returns the telemetry provider, which may be nil.
func (s *Server) Telemetry() *telemetry.Provider {
	return s.telemetry
}

// Settings returns the current settings. Callers must not modify them.
func (s *Server) Settings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// Overrides returns the engine overrides derived from the current settings.
func (s *Server) Overrides() emmet.Overrides {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.overrides
}

// Trace returns the trace level set by the client.
func (s *Server) Trace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.trace
}

// SetTrace updates the trace level.
func (s *Server) SetTrace(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trace = value
}

// SetWorkspaceFolders replaces the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []protocol.WorkspaceFolder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaceFolders = slices.Clone(folders)
}

// UpdateWorkspaceFolders applies a didChangeWorkspaceFolders event.
func (s *Server) UpdateWorkspaceFolders(added, removed []protocol.WorkspaceFolder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaceFolders = slices.DeleteFunc(s.workspaceFolders, func(f protocol.WorkspaceFolder) bool {
		return slices.ContainsFunc(removed, func(r protocol.WorkspaceFolder) bool { return r.URI == f.URI })
	})

	for _, f := range added {
		if !slices.ContainsFunc(s.workspaceFolders, func(w protocol.WorkspaceFolder) bool { return w.URI == f.URI }) {
			s.workspaceFolders = append(s.workspaceFolders, f)
		}
	}
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []protocol.WorkspaceFolder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.workspaceFolders)
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clientCapabilities
}

// SupportsSnippets returns true if the client supports snippet completions.
// Snippets are assumed until initialize has recorded the capabilities.
func (s *Server) SupportsSnippets() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.clientCapabilities
	if c == nil {
		return true
	}

	if c.TextDocument == nil || c.TextDocument.Completion == nil {
		return false
	}

	item := c.TextDocument.Completion.CompletionItem
	if item == nil || item.SnippetSupport == nil {
		return false
	}

	return *item.SnippetSupport
}

// SupportsConfigurationRegistration reports whether the client accepts a
// dynamic registration for workspace/didChangeConfiguration.
func (s *Server) SupportsConfigurationRegistration() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.clientCapabilities
	if c == nil || c.Workspace == nil || c.Workspace.DidChangeConfiguration == nil {
		return false
	}

	dyn := c.Workspace.DidChangeConfiguration.DynamicRegistration

	return dyn != nil && *dyn
}

// SupportsWorkspaceFolders reports whether the client handles workspace
// folders.
func (s *Server) SupportsWorkspaceFolders() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.clientCapabilities
	if c == nil || c.Workspace == nil || c.Workspace.WorkspaceFolders == nil {
		return false
	}

	return *c.Workspace.WorkspaceFolders
}
