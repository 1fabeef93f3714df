package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentCardRoundTripWithSecuritySchemes(t *testing.T) {
	card := AgentCard{
		Name:         "Test Agent",
		URL:          "http://localhost:8080",
		Version:      "0.1.0",
		Capabilities: &AgentCapabilities{Streaming: true},
		SecuritySchemes: map[string]SecurityScheme{
			"bearer": HTTPAuthSecurityScheme{Type: "http", Scheme: "bearer"},
			"key":    APIKeySecurityScheme{Type: "apiKey", Name: "X-API-Key", In: "header"},
		},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Skills:             []AgentSkill{{ID: "s1", Name: "Skill One"}},
	}

	raw, err := json.Marshal(card)
	require.NoError(t, err)

	var decoded AgentCard
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.NotNil(t, decoded.Capabilities)
	assert.True(t, decoded.Capabilities.Streaming)
	require.Len(t, decoded.SecuritySchemes, 2)

	bearer, ok := decoded.SecuritySchemes["bearer"].(HTTPAuthSecurityScheme)
	require.True(t, ok)
	assert.Equal(t, "bearer", bearer.Scheme)

	key, ok := decoded.SecuritySchemes["key"].(APIKeySecurityScheme)
	require.True(t, ok)
	assert.Equal(t, "X-API-Key", key.Name)
}

func TestUnmarshalSecuritySchemeUnknownType(t *testing.T) {
	_, err := unmarshalSecurityScheme([]byte(`{"type":"bogus"}`))
	assert.Error(t, err)
}
