package state

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enumDoc struct {
	Protocol Protocol
	Layer    Layer
	Kind     NodeKind
}

func TestSerializeEnums(t *testing.T) {
	doc := enumDoc{Protocol: ProtocolISIS, Layer: LayerDataLink, Kind: KindSwitch}
	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "protocol: ISIS")
	assert.Contains(t, string(out), "layer: ethernet")
	assert.Contains(t, string(out), "kind: switch")

	var back enumDoc
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, doc, back)
}

func TestDeserializeInvalid(t *testing.T) {
	var doc enumDoc
	err := yaml.Unmarshal([]byte("protocol: eigrp\n"), &doc)
	assert.ErrorContains(t, err, "unknown protocol")
}

func TestTopologyConfigRoundTrip(t *testing.T) {
	cfg, err := ParseTopologyConfig([]byte(sampleTopology))
	require.NoError(t, err)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "protocol: OSPF")
	assert.Contains(t, string(out), "layers: ethernet")

	back, err := ParseTopologyConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Systems[0].Protocol, back.Systems[0].Protocol)
	assert.Equal(t, cfg.Links[1].Layers, back.Links[1].Layers)
	assert.Equal(t, cfg.Nodes[2].Kind, back.Nodes[2].Kind)
	assert.NoError(t, TopologyConfigValidator(back))
}
