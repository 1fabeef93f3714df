package a2a

import (
	"encoding/json"
	"fmt"
)

// AgentCard conveys key information about an agent: identity, where it's
// hosted, what it can do, and how a client authenticates to it. Served at
// GET /.well-known/agent.json by the RPC Server and consumed by the
// AgentCard Resolver on the client side.
type AgentCard struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`

	Provider *AgentProvider `json:"provider,omitempty"`

	Version          string `json:"version"`
	DocumentationURL string `json:"documentationUrl,omitempty"`

	Capabilities *AgentCapabilities `json:"capabilities"`

	// Authentication is the simple scheme list most agents publish.
	Authentication *AgentAuthentication `json:"authentication,omitempty"`

	// SecuritySchemes/Security follow the richer OpenAPI-style security
	// model for agents that need more than a bare scheme name.
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
	Security        []map[string][]string     `json:"security,omitempty"`

	DefaultInputModes  []string `json:"defaultInputModes"`
	DefaultOutputModes []string `json:"defaultOutputModes"`

	Skills []AgentSkill `json:"skills"`
}

type agentCardWire struct {
	Name               string                     `json:"name"`
	Description        string                     `json:"description"`
	URL                string                     `json:"url"`
	Provider           *AgentProvider             `json:"provider,omitempty"`
	Version            string                     `json:"version"`
	DocumentationURL   string                     `json:"documentationUrl,omitempty"`
	Capabilities       *AgentCapabilities         `json:"capabilities"`
	Authentication     *AgentAuthentication       `json:"authentication,omitempty"`
	SecuritySchemes    map[string]json.RawMessage `json:"securitySchemes,omitempty"`
	Security           []map[string][]string      `json:"security,omitempty"`
	DefaultInputModes  []string                   `json:"defaultInputModes"`
	DefaultOutputModes []string                   `json:"defaultOutputModes"`
	Skills             []AgentSkill               `json:"skills"`
}

// MarshalJSON serializes SecuritySchemes by delegating to each concrete
// scheme's own struct tags; the "type" field on each concrete type is the
// wire discriminator, mirroring how Part/Message discriminate on "kind".
func (c AgentCard) MarshalJSON() ([]byte, error) {
	wire := agentCardWire{
		Name:               c.Name,
		Description:        c.Description,
		URL:                c.URL,
		Provider:           c.Provider,
		Version:            c.Version,
		DocumentationURL:   c.DocumentationURL,
		Capabilities:       c.Capabilities,
		Authentication:     c.Authentication,
		Security:           c.Security,
		DefaultInputModes:  c.DefaultInputModes,
		DefaultOutputModes: c.DefaultOutputModes,
		Skills:             c.Skills,
	}
	if len(c.SecuritySchemes) > 0 {
		wire.SecuritySchemes = make(map[string]json.RawMessage, len(c.SecuritySchemes))
		for name, scheme := range c.SecuritySchemes {
			raw, err := json.Marshal(scheme)
			if err != nil {
				return nil, fmt.Errorf("a2a: marshal security scheme %q: %w", name, err)
			}
			wire.SecuritySchemes[name] = raw
		}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON discriminates each SecuritySchemes entry by its "type"
// field.
func (c *AgentCard) UnmarshalJSON(data []byte) error {
	var wire agentCardWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Name = wire.Name
	c.Description = wire.Description
	c.URL = wire.URL
	c.Provider = wire.Provider
	c.Version = wire.Version
	c.DocumentationURL = wire.DocumentationURL
	c.Capabilities = wire.Capabilities
	c.Authentication = wire.Authentication
	c.Security = wire.Security
	c.DefaultInputModes = wire.DefaultInputModes
	c.DefaultOutputModes = wire.DefaultOutputModes
	c.Skills = wire.Skills

	if len(wire.SecuritySchemes) == 0 {
		return nil
	}
	c.SecuritySchemes = make(map[string]SecurityScheme, len(wire.SecuritySchemes))
	for name, raw := range wire.SecuritySchemes {
		scheme, err := unmarshalSecurityScheme(raw)
		if err != nil {
			return fmt.Errorf("a2a: decode security scheme %q: %w", name, err)
		}
		c.SecuritySchemes[name] = scheme
	}
	return nil
}

func unmarshalSecurityScheme(raw json.RawMessage) (SecurityScheme, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	switch SecuritySchemeType(probe.Type) {
	case HTTPAuthSecurity:
		var s HTTPAuthSecurityScheme
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case OAuth2Security:
		var s OAuth2SecurityScheme
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case OpenIdConnectSecurity:
		var s OpenIdConnectSecurityScheme
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case APIKeySecurity:
		var s APIKeySecurityScheme
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("a2a: unknown security scheme type %q", probe.Type)
	}
}

// AgentProvider identifies the organization that stands behind an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url"`
}

// AgentCapabilities advertises which optional protocol features an agent
// implements.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitempty"`
	PushNotifications      bool `json:"pushNotifications,omitempty"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

// AuthSchema names a bare authentication scheme (as opposed to the richer
// SecurityScheme union).
type AuthSchema string

const (
	AuthSchemaBasic  AuthSchema = "Basic"
	AuthSchemaBearer AuthSchema = "Bearer"
)

// AgentAuthentication is the simple authentication declaration most agent
// cards use: a list of supported schemes, plus credentials for cards that
// are themselves gated.
type AgentAuthentication struct {
	Schemes     []AuthSchema `json:"schemes"`
	Credentials string       `json:"credentials,omitempty"`
}

// AgentSkill is one unit of capability an agent exposes; AgentCard.Skills
// lets a client pick a suitable agent for a task without probing it first.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// SecuritySchemeType discriminates the SecurityScheme union.
type SecuritySchemeType string

const (
	APIKeySecurity        SecuritySchemeType = "apiKey"
	HTTPAuthSecurity      SecuritySchemeType = "http"
	OAuth2Security        SecuritySchemeType = "oauth2"
	OpenIdConnectSecurity SecuritySchemeType = "openIdConnect"
)

// SecurityScheme groups the concrete scheme types an AgentCard can declare
// under SecuritySchemes.
type SecurityScheme interface {
	isSecurityScheme()
}

// HTTPAuthSecurityScheme describes HTTP authentication (Basic, Bearer, ...).
type HTTPAuthSecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (HTTPAuthSecurityScheme) isSecurityScheme() {}

// OAuth2SecurityScheme describes an OAuth2-protected agent.
type OAuth2SecurityScheme struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Flows       OAuth2Flows `json:"flows"`
}

func (OAuth2SecurityScheme) isSecurityScheme() {}

// OAuth2Flows lists the OAuth2 flows an agent supports; at least one should
// be set.
type OAuth2Flows struct {
	Implicit          *ImplicitOAuthFlow          `json:"implicit,omitempty"`
	AuthorizationCode *AuthorizationCodeOAuthFlow `json:"authorizationCode,omitempty"`
	ClientCredentials *ClientCredentialsOAuthFlow `json:"clientCredentials,omitempty"`
	Password          *PasswordOAuthFlow          `json:"password,omitempty"`
}

type ImplicitOAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl"`
	RefreshURL       string            `json:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes"`
}

type AuthorizationCodeOAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl"`
	TokenURL         string            `json:"tokenUrl"`
	RefreshURL       string            `json:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes"`
}

type ClientCredentialsOAuthFlow struct {
	TokenURL   string            `json:"tokenUrl"`
	RefreshURL string            `json:"refreshUrl,omitempty"`
	Scopes     map[string]string `json:"scopes"`
}

type PasswordOAuthFlow struct {
	TokenURL   string            `json:"tokenUrl"`
	RefreshURL string            `json:"refreshUrl,omitempty"`
	Scopes     map[string]string `json:"scopes"`
}

// OpenIdConnectSecurityScheme points to an OIDC discovery document.
type OpenIdConnectSecurityScheme struct {
	Type             string `json:"type"`
	OpenIdConnectURL string `json:"openIdConnectUrl"`
	Description      string `json:"description,omitempty"`
}

func (OpenIdConnectSecurityScheme) isSecurityScheme() {}

// APIKeySecurityScheme describes an API-key credential carried in a header,
// query parameter, or cookie.
type APIKeySecurityScheme struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description,omitempty"`
}

func (APIKeySecurityScheme) isSecurityScheme() {}
